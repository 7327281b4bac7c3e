package usecase

import (
	"context"
	"fmt"

	"scormtrack/internal/modules/suspenddata/domain"
	"scormtrack/internal/modules/suspenddata/dto"
	codecin "scormtrack/internal/modules/suspenddata/port/in"
	apperrors "scormtrack/internal/platform/errors"
)

type Interactor struct{}

func NewInteractor() codecin.Usecase {
	return &Interactor{}
}

func (i *Interactor) Decode(_ context.Context, input dto.DecodeInput) (dto.DecodeOutput, error) {
	out := dto.DecodeOutput{Inner: innerText(input.Blob)}
	res, ok := domain.Decode(input.Blob)
	if !ok {
		return out, nil
	}
	out.Found = true
	out.Kind = string(res.Kind)
	out.Current = res.Current
	out.Furthest = res.Furthest
	return out, nil
}

func (i *Interactor) Encode(_ context.Context, input dto.EncodeInput) (dto.EncodeOutput, error) {
	if input.Target < 1 {
		return dto.EncodeOutput{}, fmt.Errorf("%w: target must be 1-based, got %d", apperrors.ErrInvalidInput, input.Target)
	}
	modified := domain.ModifyPosition(input.Blob, input.Target)
	return dto.EncodeOutput{Blob: modified, Changed: modified != input.Blob}, nil
}

func innerText(raw string) string {
	for _, b := range domain.Classify(raw) {
		switch v := b.(type) {
		case domain.LZBase64Blob:
			return v.Text()
		case domain.Base64JSONBlob:
			return v.Text()
		}
	}
	return ""
}
