package domain

import (
	"encoding/json"
	"testing"
)

func TestPatch_ValidateAndApply(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"empty", `{}`, false},
		{"name", `{"name":"Apollo"}`, false},
		{"short name", `{"name":"A"}`, true},
		{"null name", `{"name":null}`, true},
		{"status", `{"status":"ARCHIVED"}`, false},
		{"bad status", `{"status":"DELETED"}`, true},
		{"null description", `{"description":null}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Patch
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	var p Patch
	_ = json.Unmarshal([]byte(`{"status":"COMPLETED","description":""}`), &p)
	proj := Project{Name: "Apollo", Description: "moon", Status: StatusActive}
	p.Apply(&proj)
	if proj.Name != "Apollo" || proj.Description != "" || proj.Status != StatusCompleted {
		t.Errorf("Apply = %+v", proj)
	}
	if p.Empty() {
		t.Error("patch with fields is not empty")
	}
}
