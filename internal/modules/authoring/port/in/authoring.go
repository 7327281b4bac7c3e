package in

import (
	"context"

	"scormtrack/internal/modules/authoring/dto"
)

type Usecase interface {
	Detect(ctx context.Context, input dto.DetectInput) (dto.DetectOutput, error)
	NavigateTo(ctx context.Context, input dto.NavigateInput) (dto.NavigateOutput, error)
}
