package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SchemaVersion is stamped into every persisted ledger so later releases can
// migrate old data instead of misreading it.
const SchemaVersion = 1

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SchemaInfo{},
	&SwapEntry{},
	&SwapOverride{},
	&SwapAudit{},
}

// SchemaInfo records the schema version the tables were written with.
type SchemaInfo struct {
	gorm.Model
	Version int `json:"version"`
}

func (*SchemaInfo) TableName() string {
	return "schema_infos"
}

// SwapEntry is one vehicle's swap record: its engine overrides and which of
// them is current. CurrentEngineID 0 means the vehicle runs stock.
type SwapEntry struct {
	gorm.Model
	VehicleKey      string         `json:"vehicleKey" gorm:"size:128;uniqueIndex:idx_swapentry_vehicle_key"`
	CurrentEngineID int            `json:"currentEngineId"`
	Overrides       []SwapOverride `json:"overrides" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*SwapEntry) TableName() string {
	return "swap_entries"
}

// SwapOverride is one stored engine override with its per-vehicle tuning.
// Position preserves insertion order across save/load round trips.
type SwapOverride struct {
	ID            uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	SwapEntryID   uint    `json:"swapEntryId" gorm:"index:idx_swapoverride_entry_id"`
	EngineID      int     `json:"engineId" gorm:"index:idx_swapoverride_engine_id"`
	TurboPressure float32 `json:"turboPressure"`
	FinalDrive    float32 `json:"finalDrive"`
	Position      int     `json:"position"`
}

func (*SwapOverride) TableName() string {
	return "swap_overrides"
}

// SwapAudit is an append-only log of ledger saves: who changed what, kept for
// debugging tampered or corrupted save data. Details carries the saved
// overrides as JSON.
type SwapAudit struct {
	ID         uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time       time.Time      `json:"time" gorm:"index:idx_swapaudit_time"`
	VehicleKey string         `json:"vehicleKey" gorm:"size:128;index:idx_swapaudit_vehicle_key"`
	EngineID   int            `json:"engineId"`
	Action     string         `json:"action" gorm:"size:32"`
	Details    datatypes.JSON `json:"details"`
}

func (*SwapAudit) TableName() string {
	return "swap_audits"
}
