// Package system holds the per-frame systems of the gravity scene. Each
// system reads the controller snapshot or asks the controller for changes;
// none of them writes gravity state directly.
package system

import (
	"github.com/milk9111/gravityhelper/script"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("gravityhelper.system")

// Units looks up loaded script units by name.
type Units interface {
	Unit(name string) (*script.Unit, bool)
}

const (
	playerUnit = "player"
	seekerUnit = "seeker"
)
