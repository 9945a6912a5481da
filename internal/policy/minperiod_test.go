package policy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"domcart/internal/domain"
)

func TestMinYears(t *testing.T) {
	assert.Equal(t, 2, MinYears("ai"))
	assert.Equal(t, 1, MinYears("com"))
	assert.Equal(t, 1, MinYears(""))
}

func TestMinYearsForDomain(t *testing.T) {
	assert.Equal(t, 2, MinYearsForDomain("startup.ai"))
	assert.Equal(t, 2, MinYearsForDomain("startup.AI"))
	assert.Equal(t, 1, MinYearsForDomain("startup.dev"))
	assert.Equal(t, 1, MinYearsForDomain("nodots"))
}

func TestClampPeriod(t *testing.T) {
	tests := []struct {
		name          string
		item          domain.CartItem
		wantYears     int
		wantCorrected bool
	}{
		{
			name:          "below minimum is raised",
			item:          domain.CartItem{DomainName: "x.ai", RegistrationPeriod: 1},
			wantYears:     2,
			wantCorrected: true,
		},
		{
			name:          "at minimum is untouched",
			item:          domain.CartItem{DomainName: "x.ai", RegistrationPeriod: 2},
			wantYears:     2,
			wantCorrected: false,
		},
		{
			name:          "above minimum is untouched",
			item:          domain.CartItem{DomainName: "x.ai", RegistrationPeriod: 5},
			wantYears:     5,
			wantCorrected: false,
		},
		{
			name:          "default minimum applies to unknown tlds",
			item:          domain.CartItem{DomainName: "x.com", RegistrationPeriod: 0},
			wantYears:     1,
			wantCorrected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, corrected := ClampPeriod(tt.item)
			assert.Equal(t, tt.wantYears, got.RegistrationPeriod)
			assert.Equal(t, tt.wantCorrected, corrected)
		})
	}
}

func TestClampAll(t *testing.T) {
	items := []domain.CartItem{
		{DomainName: "a.ai", Price: decimal.NewFromInt(100), RegistrationPeriod: 1},
		{DomainName: "b.com", Price: decimal.NewFromInt(10), RegistrationPeriod: 1},
	}

	assert.True(t, ClampAll(items))
	assert.Equal(t, 2, items[0].RegistrationPeriod)
	assert.Equal(t, 1, items[1].RegistrationPeriod)

	// Second pass has nothing left to correct.
	assert.False(t, ClampAll(items))
}
