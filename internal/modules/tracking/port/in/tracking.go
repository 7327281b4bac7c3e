package in

import (
	"context"

	"scormtrack/internal/modules/tracking/domain"
	"scormtrack/internal/modules/tracking/dto"
	trackingout "scormtrack/internal/modules/tracking/port/out"
)

type Usecase interface {
	Start(ctx context.Context) error
	Stop()
	OnAPIReady(api trackingout.SCORMAPI, version domain.APIVersion) trackingout.SCORMAPI
	HandleMessage(ctx context.Context, raw []byte) error
	Navigate(ctx context.Context, target int) bool
	ReportProgress(ctx context.Context, input dto.ProgressInput)
	Snapshot() dto.SnapshotOutput
}
