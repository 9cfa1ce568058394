package docs

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

func TestRegisteredSpecs(t *testing.T) {
	for _, name := range []string{StoreInstance, TrackerInstance} {
		doc, err := swag.ReadDoc(name)
		if err != nil {
			t.Fatalf("%s: read doc: %v", name, err)
		}
		if !json.Valid([]byte(doc)) {
			t.Fatalf("%s: swagger doc is not valid JSON", name)
		}
		if !strings.Contains(doc, `"/health"`) {
			t.Errorf("%s: expected /health path", name)
		}
	}
}
