// Package plot turns a filtered selection of readings into chart data and renders it with go-chart.
package plot

import (
	"fmt"
	"strings"
)

// Kind selects one of the eight charts the viewer offers.
type Kind int

const (
	TemperatureTime Kind = iota
	HumidityTime
	CPUTime
	Comparative
	TemperatureVsHumidity
	TemperatureVsCPU
	HumidityVsCPU
	Matrix
)

var kindNames = [...]string{
	TemperatureTime:       "temperatura",
	HumidityTime:          "umidade",
	CPUTime:               "cpu",
	Comparative:           "comparativo",
	TemperatureVsHumidity: "temp-umid",
	TemperatureVsCPU:      "temp-cpu",
	HumidityVsCPU:         "umid-cpu",
	Matrix:                "matriz",
}

// Button captions, also used as chart titles for the single-panel kinds.
var kindTitles = [...]string{
	TemperatureTime:       "Temperatura x Tempo",
	HumidityTime:          "Umidade x Tempo",
	CPUTime:               "Temp_CPU x Tempo",
	Comparative:           "Comparativo",
	TemperatureVsHumidity: "Temp x Umid",
	TemperatureVsCPU:      "Temp x CPU",
	HumidityVsCPU:         "Umid x CPU",
	Matrix:                "Matriz",
}

// Kinds lists every kind in button order.
func Kinds() []Kind {
	return []Kind{TemperatureTime, HumidityTime, CPUTime, Comparative, TemperatureVsHumidity, TemperatureVsCPU, HumidityVsCPU, Matrix}
}

func (k Kind) valid() bool { return k >= TemperatureTime && k <= Matrix }

// String returns the short name accepted by ParseKind.
func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Title returns the caption shown on the kind's button.
func (k Kind) Title() string {
	if !k.valid() {
		return k.String()
	}
	return kindTitles[k]
}

// ParseKind accepts a short name ("temp-umid") or a caption ("Temp x Umid"), case-insensitively.
func ParseKind(s string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if v == kindNames[k] || v == strings.ToLower(kindTitles[k]) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown plot kind %q", s)
}
