package in

import (
	"context"

	"scormtrack/internal/modules/suspenddata/dto"
)

type Usecase interface {
	Decode(ctx context.Context, input dto.DecodeInput) (dto.DecodeOutput, error)
	Encode(ctx context.Context, input dto.EncodeInput) (dto.EncodeOutput, error)
}
