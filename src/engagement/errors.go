package engagement

import "errors"

// ErrDisabled is returned by ProcessMessage when the engagement feature kill
// switch is off; the collaborator layer should surface this as a distinct
// "disabled" status rather than a failure.
var ErrDisabled = errors.New("engagement: feature disabled")

// ErrDetectionFailed wraps a fatal failure from the detection engine. Unlike
// LLM failures (absorbed by the orchestrator's micro-fallback), detection
// failures abort the turn and surface to the collaborator layer.
// Controller.detectSafely recovers a panic from detector.Detect and maps it
// to this error, which handlers.go then reports as a 5xx.
var ErrDetectionFailed = errors.New("engagement: detection failed")
