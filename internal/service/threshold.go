package service

import (
	"fmt"

	"thermotrack/internal/config"
	"thermotrack/internal/models"
)

// ThresholdPolicy turns a reading into zero or more alerts.
// Temperatures at or above Critical are critical, at or above Warning a
// warning; humidity at or above HumidityMax is a warning.
type ThresholdPolicy struct {
	TemperatureWarning  float64
	TemperatureCritical float64
	HumidityMax         float64
}

func NewThresholdPolicy(cfg config.ThresholdConfig) ThresholdPolicy {
	return ThresholdPolicy{
		TemperatureWarning:  cfg.TemperatureWarning,
		TemperatureCritical: cfg.TemperatureCritical,
		HumidityMax:         cfg.HumidityMax,
	}
}

// Breach is one threshold crossed by a reading
type Breach struct {
	Severity models.AlertSeverity
	Message  string
}

// Evaluate returns the breaches of a reading for a device
func (p ThresholdPolicy) Evaluate(device *models.Device, r *models.Reading) []Breach {
	var breaches []Breach

	if r.Temperature != nil {
		t := *r.Temperature
		switch {
		case t >= p.TemperatureCritical:
			breaches = append(breaches, Breach{
				Severity: models.SeverityCritical,
				Message:  fmt.Sprintf("%s: temperature %.1f°C reached the critical limit of %.1f°C", device.DeviceUID, t, p.TemperatureCritical),
			})
		case t >= p.TemperatureWarning:
			breaches = append(breaches, Breach{
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("%s: temperature %.1f°C is above %.1f°C", device.DeviceUID, t, p.TemperatureWarning),
			})
		}
	}

	if r.Humidity != nil && *r.Humidity >= p.HumidityMax {
		breaches = append(breaches, Breach{
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("%s: humidity %.1f%% is above %.1f%%", device.DeviceUID, *r.Humidity, p.HumidityMax),
		})
	}

	return breaches
}
