package types

import (
	"encoding/json"
)

// SportConfig is a static, hand-authored sport definition loaded verbatim
// from configs/sports/{sport_id}.json.
type SportConfig struct {
	SportID         string            `json:"sport_id"`
	Name            string            `json:"name"`
	ThemeColor      string            `json:"theme_color"`
	Skills          []string          `json:"skills"`
	Attributes      map[string]string `json:"attributes"`
	EquipmentSchema json.RawMessage   `json:"equipment_schema"`
}
