package out

import (
	"context"

	codecdto "scormtrack/internal/modules/suspenddata/dto"
	codecin "scormtrack/internal/modules/suspenddata/port/in"
	trackingout "scormtrack/internal/modules/tracking/port/out"
)

type SuspendDataCodecAdapter struct {
	codec codecin.Usecase
}

func NewSuspendDataCodecAdapter(codec codecin.Usecase) trackingout.SuspendDataCodec {
	return &SuspendDataCodecAdapter{codec: codec}
}

func (a *SuspendDataCodecAdapter) Decode(raw string) (trackingout.CodecResult, bool) {
	out, err := a.codec.Decode(context.Background(), codecdto.DecodeInput{Blob: raw})
	if err != nil || !out.Found {
		return trackingout.CodecResult{}, false
	}
	return trackingout.CodecResult{Kind: out.Kind, Current: out.Current, Furthest: out.Furthest}, true
}

// Modify returns raw unchanged whenever the codec cannot rewrite it.
func (a *SuspendDataCodecAdapter) Modify(raw string, target int) string {
	out, err := a.codec.Encode(context.Background(), codecdto.EncodeInput{Blob: raw, Target: target})
	if err != nil {
		return raw
	}
	return out.Blob
}
