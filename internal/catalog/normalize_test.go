package catalog

import "testing"

func TestNormalizeSiteName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Esch/Alzette", "esch_sur_alzette"},
		{"Sandweiler", "sandweiler"},
		{"Pétange", "petange"},
		{"Bissen - Centre", "bissen_-_centre"},
		{"Marnach", "marnach"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeSiteName(tt.in); got != tt.want {
				t.Errorf("NormalizeSiteName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeVehicleType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Voiture", "car"},
		{"Camionnette", "van"},
		{"Camion", "truck"},
		{"Tracteur", "tractor"},
		{"Autobus / Autocar", "bus"},
		{"Remorque < 3,5 t", "small_trailer"},
		{"Remorque > 3,5 t", "large_trailer"},
		{"Motocycle", "motocycle"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeVehicleType(tt.in); got != tt.want {
				t.Errorf("NormalizeVehicleType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
