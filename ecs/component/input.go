package component

import "github.com/milk9111/gravityhelper/actor"

var InputComponent = NewComponent[actor.Input]()
