package out

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scormtrack/internal/modules/authoring/service"
	authoringusecase "scormtrack/internal/modules/authoring/usecase"
	codecusecase "scormtrack/internal/modules/suspenddata/usecase"
	"scormtrack/internal/platform/dom"
)

func TestSuspendDataCodecAdapter(t *testing.T) {
	t.Parallel()
	codec := NewSuspendDataCodecAdapter(codecusecase.NewInteractor())

	res, ok := codec.Decode("cs=3,vs=0:1:2:3,qt=0,qr=,ts=30013")
	require.True(t, ok)
	assert.Equal(t, "delimited", res.Kind)
	assert.Equal(t, 4, res.Current)
	assert.Equal(t, 4, res.Furthest)

	assert.Equal(t, `{"resume":"0_9"}`, codec.Modify(`{"resume":"0_6"}`, 10))
	assert.Equal(t, "opaque", codec.Modify("opaque", 10))
	assert.Equal(t, "cs=3", codec.Modify("cs=3", 0), "invalid targets leave the blob alone")
}

func captivatePage(current, total int) (*dom.Page, map[string]any) {
	vars := map[string]any{"cpInfoCurrentSlide": current, "cpInfoSlideCount": total}
	page := dom.NewPage()
	page.Define("cpAPIInterface.getVariableValue", func(args ...any) (any, error) {
		return vars[args[0].(string)], nil
	})
	page.Define("cpAPIInterface.setVariableValue", func(args ...any) (any, error) {
		vars[args[0].(string)] = args[1]
		return nil, nil
	})
	return page, vars
}

func TestVendorBridgeAdapter(t *testing.T) {
	t.Parallel()
	page, vars := captivatePage(3, 12)
	bridge := NewVendorBridgeAdapter(authoringusecase.NewInteractor(service.NewRegistry()), page)

	sig, ok := bridge.Detect()
	require.True(t, ok)
	assert.Equal(t, "captivate", sig.Vendor)
	assert.Equal(t, 3, sig.Current)
	assert.Equal(t, 12, sig.Total)

	vendor, ok := bridge.NavigateTo(9)
	require.True(t, ok)
	assert.Equal(t, "captivate", vendor)
	assert.Equal(t, 8, vars["cpCmndGotoSlide"])
}

func TestDOMFrameInnerFrames(t *testing.T) {
	t.Parallel()
	vendors := authoringusecase.NewInteractor(service.NewRegistry())
	root := dom.NewPage()
	sameOrigin, vars := captivatePage(1, 5)
	crossOrigin := dom.NewPage()
	var received []any
	crossOrigin.OnMessage(func(msg any) { received = append(received, msg) })
	root.AddFrame("content", sameOrigin, false)
	root.AddFrame("player", crossOrigin, true)

	frame := NewDOMFrame(root, vendors, nil, nil)
	assert.False(t, frame.Reload())
	assert.Error(t, frame.ReloadPage())

	inner := frame.InnerFrames()
	require.Len(t, inner, 2)
	assert.True(t, inner[0].NavigateTo(4))
	assert.Equal(t, 3, vars["cpCmndGotoSlide"])
	assert.False(t, inner[1].NavigateTo(4))
	require.NoError(t, inner[1].PostMessage("hello"))
	assert.Equal(t, []any{"hello"}, received)

	calls := 0
	stop := frame.ObserveMutations(func() { calls++ })
	root.SetHash("#/lessons/a")
	stop()
	root.SetHash("#/lessons/b")
	assert.Equal(t, 1, calls)
}
