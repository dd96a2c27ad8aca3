package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"дни и часы", 50 * time.Hour, "2 días y 2 horas"},
		{"один день и один час", 25 * time.Hour, "1 día y 1 hora"},
		{"ровно дни", 48 * time.Hour, "2 días"},
		{"только часы", 3 * time.Hour, "3 horas"},
		{"один час", time.Hour, "1 hora"},
		{"меньше часа", 30 * time.Minute, "menos de 1 hora"},
		{"ноль", 0, "menos de 1 hora"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRemaining(tt.d))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "150 o", FormatAmount(150, "o"))
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 7, 0, 0, time.UTC)
	assert.Equal(t, "01.05.2024 09:07", FormatDateTime(ts))
}

func TestCooldownError(t *testing.T) {
	err := NewCooldownError(48 * time.Hour)

	// Ошибка извлекается через errors.As даже из обёрток
	wrapped := fmt.Errorf("обработка команды: %w", err)

	var cooldown *CooldownError
	require.True(t, errors.As(wrapped, &cooldown))
	assert.Equal(t, 48*time.Hour, cooldown.Remaining)
}
