package stale

import "errors"

var errShortSwitchesFile = errors.New("stale: switches file has fewer lines than the recorded argv count")
