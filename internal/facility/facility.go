// Package facility loads the per-warehouse profile that tunes the
// receiving workflow: post-commit prompts, platform types, date windows,
// and printer/GL settings. The profile is a TOML file deployed with the
// facility; a missing file yields the defaults.
package facility

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Profile is the facility-level receiving configuration.
type Profile struct {
	// PutAwayPrompt inserts the put-away confirmation between pallet
	// commit and the next pallet scan.
	PutAwayPrompt bool `toml:"put_away_prompt"`

	// PlatformPrompt asks for a platform type after commit; PlatformTypes
	// lists the selectable values.
	PlatformPrompt bool     `toml:"platform_prompt"`
	PlatformTypes  []string `toml:"platform_types"`

	// DateYearsBack is the N in the code-date year window [today-N, today+1].
	DateYearsBack int `toml:"date_years_back"`

	// LabelPrinter is the default belt printer for pallet labels.
	LabelPrinter string `toml:"label_printer"`

	// QuickReceiveGLCode is accrued on cross-dock bookings.
	QuickReceiveGLCode string `toml:"quick_receive_gl_code"`

	// CloseSettleDelay is how long batch close waits after the operator's
	// done signal before reconciling, letting the last pallet's writes land.
	CloseSettleDelay time.Duration `toml:"-"`

	// CloseSettleDelayString is the TOML-facing form of CloseSettleDelay.
	CloseSettleDelayString string `toml:"close_settle_delay"`

	// MoveToYard publishes a yard notification when a batch closes.
	MoveToYard bool `toml:"move_to_yard"`
}

// Default returns the profile used when no file is configured.
func Default() *Profile {
	return &Profile{
		PlatformTypes:    []string{"WOOD", "CHEP", "PLASTIC"},
		DateYearsBack:    2,
		CloseSettleDelay: 10 * time.Second,
	}
}

// Load reads a profile from the given TOML file. An empty path returns the
// defaults.
func Load(path string) (*Profile, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	if _, err := toml.DecodeFile(path, p); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("facility profile %s: %w", path, err)
		}
		return nil, fmt.Errorf("parse facility profile %s: %w", path, err)
	}
	if p.DateYearsBack <= 0 {
		p.DateYearsBack = 2
	}
	if p.CloseSettleDelayString != "" {
		d, err := time.ParseDuration(p.CloseSettleDelayString)
		if err != nil {
			return nil, fmt.Errorf("close_settle_delay: %w", err)
		}
		p.CloseSettleDelay = d
	}
	return p, nil
}
