package tcaws_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/tcaws"
)

func TestStorageClass_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		class tcaws.StorageClass
		valid bool
	}{
		{name: "standard is valid", class: tcaws.StorageClassStandard, valid: true},
		{name: "reduced redundancy is valid", class: tcaws.StorageClassReducedRedundancy, valid: true},
		{name: "empty is invalid", class: "", valid: false},
		{name: "glacier is invalid", class: "GLACIER", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.class.IsValid())
		})
	}
}

func TestStorageClassFor(t *testing.T) {
	assert.Equal(t, tcaws.StorageClassReducedRedundancy, tcaws.StorageClassFor(true))
	assert.Equal(t, tcaws.StorageClassStandard, tcaws.StorageClassFor(false))
}

func TestParsePresignMethod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to GET", input: "", want: http.MethodGet},
		{name: "get", input: "GET", want: http.MethodGet},
		{name: "lowercase head", input: "head", want: http.MethodHead},
		{name: "put with spaces", input: " put ", want: http.MethodPut},
		{name: "delete", input: "Delete", want: http.MethodDelete},
		{name: "post is rejected", input: "POST", wantErr: true},
		{name: "garbage is rejected", input: "FETCH", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tcaws.ParsePresignMethod(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, tcaws.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
