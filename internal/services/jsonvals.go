package services

import (
	"encoding/json"
	"reflect"

	"gorm.io/datatypes"
)

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return datatypes.JSON([]byte("null"))
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(raw)
}

func stringsFromJSON(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// jsonEqual compares a stored JSON column against an in-memory value by
// normalizing both through encoding/json.
func jsonEqual(raw datatypes.JSON, v interface{}) bool {
	var stored interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &stored); err != nil {
			return false
		}
	}
	enc, err := json.Marshal(v)
	if err != nil {
		return false
	}
	var proposed interface{}
	if err := json.Unmarshal(enc, &proposed); err != nil {
		return false
	}
	if stored == nil && proposed == nil {
		return true
	}
	return reflect.DeepEqual(stored, proposed)
}
