package in

import (
	"context"

	"scormtrack/internal/modules/suspenddata/dto"
	codecin "scormtrack/internal/modules/suspenddata/port/in"
)

type CLIHandler struct {
	usecase codecin.Usecase
}

func NewCLIHandler(usecase codecin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Decode(ctx context.Context, blob string) (dto.DecodeOutput, error) {
	return h.usecase.Decode(ctx, dto.DecodeInput{Blob: blob})
}

func (h CLIHandler) Encode(ctx context.Context, blob string, target int) (dto.EncodeOutput, error) {
	return h.usecase.Encode(ctx, dto.EncodeInput{Blob: blob, Target: target})
}
