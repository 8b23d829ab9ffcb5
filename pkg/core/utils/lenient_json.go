package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// DecodeRecords decodes hand-edited statement records into v. Strict JSON is
// tried first, then the input after json-repair has fixed quoting, trailing
// commas and unclosed brackets, and last the input read as Hjson.
//
// When every attempt fails the error wraps the Hjson failure, which is the
// most lenient reading and so the closest to what the author meant.
func DecodeRecords(input string, v interface{}) error {
	if err := json.Unmarshal([]byte(input), v); err == nil {
		return nil
	}

	if repaired, err := jsonrepair.RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return nil
		}
	}

	if err := decodeHjson(input, v); err != nil {
		return fmt.Errorf("invalid records: %w", err)
	}
	return nil
}

// decodeHjson goes through a generic tree so v is filled by encoding/json and
// keeps its json tags.
func decodeHjson(input string, v interface{}) error {
	var tree interface{}
	if err := hjson.Unmarshal([]byte(input), &tree); err != nil {
		return err
	}
	normalized, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	return json.Unmarshal(normalized, v)
}
