package usecase

import (
	"context"
	"fmt"

	"scormtrack/internal/modules/authoring/dto"
	authoringin "scormtrack/internal/modules/authoring/port/in"
	"scormtrack/internal/modules/authoring/service"
	apperrors "scormtrack/internal/platform/errors"
)

type Interactor struct {
	registry *service.Registry
}

func NewInteractor(registry *service.Registry) authoringin.Usecase {
	return &Interactor{registry: registry}
}

func (i *Interactor) Detect(_ context.Context, input dto.DetectInput) (dto.DetectOutput, error) {
	if input.Root == nil {
		return dto.DetectOutput{}, fmt.Errorf("%w: root window is required", apperrors.ErrInvalidInput)
	}
	detect := i.registry.Detect
	if input.Generic {
		detect = i.registry.DetectGeneric
	}
	d, ok := detect(input.Root)
	if !ok {
		return dto.DetectOutput{}, nil
	}
	return dto.DetectOutput{Found: true, Vendor: string(d.Vendor), Current: d.Current, Total: d.Total}, nil
}

func (i *Interactor) NavigateTo(_ context.Context, input dto.NavigateInput) (dto.NavigateOutput, error) {
	if input.Root == nil || input.Target < 1 {
		return dto.NavigateOutput{}, fmt.Errorf("%w: root window and 1-based target are required", apperrors.ErrInvalidInput)
	}
	vendor, ok := i.registry.NavigateTo(input.Root, input.Target)
	return dto.NavigateOutput{Navigated: ok, Vendor: string(vendor)}, nil
}
