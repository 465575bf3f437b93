package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := fromViper(newTestViper(map[string]any{"JWT_SECRET": "secret"}))

		assert.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTP.Port)
		assert.Equal(t, 5, cfg.Attendance.MaxAttempts)
		assert.Equal(t, 100*time.Millisecond, cfg.Attendance.BaseBackoff)
		assert.Equal(t, time.Hour, cfg.HolidayCacheTTL)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := fromViper(newTestViper(map[string]any{
			"JWT_SECRET":              "secret",
			"APP_ENV":                 "production",
			"ATTENDANCE_MAX_ATTEMPTS": 3,
			"CORS_ALLOWED_ORIGINS":    "https://a.example, https://b.example,",
		}))

		assert.NoError(t, err)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, 3, cfg.Attendance.MaxAttempts)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		_, err := fromViper(newTestViper(nil))
		assert.Error(t, err)
	})

	t.Run("invalid attendance attempts", func(t *testing.T) {
		_, err := fromViper(newTestViper(map[string]any{
			"JWT_SECRET":              "secret",
			"ATTENDANCE_MAX_ATTEMPTS": 0,
		}))
		assert.Error(t, err)
	})

	t.Run("bootstrap admin needs a real password", func(t *testing.T) {
		_, err := fromViper(newTestViper(map[string]any{
			"JWT_SECRET":               "secret",
			"BOOTSTRAP_ADMIN_EMAIL":    "admin@school.test",
			"BOOTSTRAP_ADMIN_PASSWORD": "short",
		}))
		assert.Error(t, err)

		cfg, err := fromViper(newTestViper(map[string]any{
			"JWT_SECRET":               "secret",
			"BOOTSTRAP_ADMIN_EMAIL":    "admin@school.test",
			"BOOTSTRAP_ADMIN_PASSWORD": "long-enough",
		}))
		assert.NoError(t, err)
		assert.Equal(t, "Administrator", cfg.Admin.Name)
		assert.Equal(t, "admin@school.test", cfg.Admin.Email)
	})
}
