package cpu

import "errors"

var (
	ErrNoSceneData   = errors.New("cpu tracer: no scene data uploaded")
	ErrNoCameraData  = errors.New("cpu tracer: no camera data uploaded")
	ErrNotSetup      = errors.New("cpu tracer: tracer not setup")
	ErrTracerBusy    = errors.New("cpu tracer: request processor did not receive block request")
	ErrFrameMismatch = errors.New("cpu tracer: block request does not match the accumulation buffer dimensions")
)
