package models

import "testing"

func TestParseCupSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CupSize
		wantErr bool
	}{
		{name: "plain number", input: "100", want: Cup100},
		{name: "with unit", input: "200ml", want: Cup200},
		{name: "upper case unit and spaces", input: " 50ML ", want: Cup50},
		{name: "not in set", input: "75", wantErr: true},
		{name: "garbage", input: "big", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCupSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCupSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseCupSize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{name: "default profile", profile: DefaultProfile()},
		{
			name: "full profile",
			profile: Profile{
				CupMl:  Cup200,
				Gender: "f",
				Age:    31,
				Outfit: map[string]string{OutfitHat: "beanie", OutfitTop: "raincoat"},
			},
		},
		{name: "zero cup", profile: Profile{}, wantErr: true},
		{name: "odd cup", profile: Profile{CupMl: 75}, wantErr: true},
		{name: "negative age", profile: Profile{CupMl: Cup50, Age: -1}, wantErr: true},
		{
			name:    "unknown slot",
			profile: Profile{CupMl: Cup50, Outfit: map[string]string{"shoes": "boots"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProfile_OutfitSummary(t *testing.T) {
	p := Profile{CupMl: Cup50, Outfit: map[string]string{OutfitTop: "raincoat", OutfitHat: "beanie"}}
	if got, want := p.OutfitSummary(), "hat=beanie, top=raincoat"; got != want {
		t.Errorf("OutfitSummary() = %q, want %q", got, want)
	}
	if got := DefaultProfile().OutfitSummary(); got != "none" {
		t.Errorf("OutfitSummary() on empty outfit = %q, want %q", got, "none")
	}
}
