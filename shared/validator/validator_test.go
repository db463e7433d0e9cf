package validator_test

import (
	"strings"
	"testing"

	"toolrent/shared/failure"
	"toolrent/shared/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type line struct {
	ToolID   string `json:"tool_id"  validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type request struct {
	StartDate string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	Items     []line          `json:"items"      validate:"required,min=1,unique=ToolID,dive"`
	Price     decimal.Decimal `json:"price"      validate:"nonnegdecimal"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		data    request
		wantErr string
	}{
		{
			name: "valid request",
			data: request{
				StartDate: "2025-01-01",
				Items:     []line{{ToolID: "t-1", Quantity: 1}, {ToolID: "t-2", Quantity: 2}},
				Price:     decimal.NewFromInt(10),
			},
		},
		{
			name: "bad date",
			data: request{
				StartDate: "01/01/2025",
				Items:     []line{{ToolID: "t-1", Quantity: 1}},
			},
			wantErr: "StartDate must be a date formatted as 2006-01-02",
		},
		{
			name: "duplicate tool",
			data: request{
				StartDate: "2025-01-01",
				Items:     []line{{ToolID: "t-1", Quantity: 1}, {ToolID: "t-1", Quantity: 2}},
			},
			wantErr: "Items must not contain duplicate ToolID",
		},
		{
			name: "zero quantity",
			data: request{
				StartDate: "2025-01-01",
				Items:     []line{{ToolID: "t-1", Quantity: 0}},
			},
			wantErr: "Quantity must be greater than 0",
		},
		{
			name: "empty items",
			data: request{
				StartDate: "2025-01-01",
			},
			wantErr: "Items is required",
		},
		{
			name: "negative price",
			data: request{
				StartDate: "2025-01-01",
				Items:     []line{{ToolID: "t-1", Quantity: 1}},
				Price:     decimal.NewFromInt(-1),
			},
			wantErr: "Price must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)

			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			assert.EqualError(t, err, tt.wantErr)
			assert.True(t, failure.IsKind(err, failure.KindValidation))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		jsonBody string
		wantErr  bool
	}{
		{
			name:     "valid body",
			jsonBody: `{"start_date":"2025-01-01","items":[{"tool_id":"t-1","quantity":2}],"price":"12.50"}`,
		},
		{
			name:     "malformed body",
			jsonBody: `{"start_date":`,
			wantErr:  true,
		},
		{
			name:     "empty body",
			jsonBody: `{}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var data request
			err := validator.Validate(strings.NewReader(tt.jsonBody), &data)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("2025-02-28", "datetime=2006-01-02"))
	assert.Error(t, validator.ValidateVar("2025-02-30", "datetime=2006-01-02"))
	assert.NoError(t, validator.ValidateVar("maintenance", "oneof=available reserved checked_out maintenance inactive"))
	assert.Error(t, validator.ValidateVar("broken", "oneof=available reserved checked_out maintenance inactive"))
}
