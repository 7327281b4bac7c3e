package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorylineResumeField(t *testing.T) {
	t.Parallel()
	blob := `{"resume":"0_6"}`
	pos, ok := ParsePosition(blob)
	require.True(t, ok)
	assert.Equal(t, 7, pos)
	assert.Equal(t, `{"resume":"0_9"}`, ModifyPosition(blob, 10))
}

func TestDelimitedCurrentAndVisited(t *testing.T) {
	t.Parallel()
	blob := "cs=3,vs=0:1:2:3,qt=0,qr=,ts=30013"
	res, ok := Decode(blob)
	require.True(t, ok)
	assert.Equal(t, KindDelimited, res.Kind)
	assert.Equal(t, 4, res.Current)
	assert.Equal(t, 4, res.Furthest)

	modified := ModifyPosition(blob, 6)
	assert.Equal(t, "cs=5,vs=0:1:2:3,qt=0,qr=,ts=30013", modified)
}

func TestCompressedStorylineRoundTrip(t *testing.T) {
	t.Parallel()
	text := `{"v":1,"d":[{"n":"Resume","v":"2_6"},{"v":"2_6","n":"Resume"}],"resume":"2_6","l":6}`
	blob := CompressToBase64(text)

	res, ok := Decode(blob)
	require.True(t, ok)
	assert.Equal(t, KindLZBase64, res.Kind)
	assert.Equal(t, 7, res.Current)

	for _, target := range []int{1, 3, 10, 25} {
		modified := ModifyPosition(blob, target)
		got, ok := ParsePosition(modified)
		require.True(t, ok)
		assert.Equal(t, target, got)
	}

	inner, ok := DecompressFromBase64(ModifyPosition(blob, 10))
	require.True(t, ok)
	assert.Equal(t, `{"v":1,"d":[{"n":"Resume","v":"2_9"},{"v":"2_9","n":"Resume"}],"resume":"2_9","l":9}`, inner)
}

func TestCompressedForeignJSONIsNotTouched(t *testing.T) {
	t.Parallel()
	blob := CompressToBase64(`{"pages":[{"id":"3_4"}],"state":"open 3_4"}`)
	assert.Equal(t, blob, ModifyPosition(blob, 5))
	_, ok := ParsePosition(blob)
	assert.False(t, ok)
}

func TestUnchangedCompressedBlobIsReturnedAsIs(t *testing.T) {
	t.Parallel()
	blob := CompressToBase64(`{"resume":"0_4","extra":"keep"}`)
	assert.Equal(t, blob, ModifyPosition(blob, 5))
}

func TestPlainJSONFields(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		blob     string
		want     int
		target   int
		modified string
	}{
		{"slide", `{"slide":3,"other":true}`, 3, 8, `{"slide":8,"other":true}`},
		{"current slide string", `{"currentSlide":"4"}`, 4, 2, `{"currentSlide":"2"}`},
		{"bookmark text", `{"bookmark":"4"}`, 5, 2, `{"bookmark":"1"}`},
		{"slide index variable", `{"variables":{"CurrentSlideIndex":4}}`, 5, 9, `{"variables":{"CurrentSlideIndex":8}}`},
		{"d array", `{"d":[{"n":"Resume","v":"1_3"}]}`, 4, 6, `{"d":[{"n":"Resume","v":"1_5"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParsePosition(tc.blob)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
			modified := ModifyPosition(tc.blob, tc.target)
			assert.Equal(t, tc.modified, modified)
			back, ok := ParsePosition(modified)
			require.True(t, ok)
			assert.Equal(t, tc.target, back)
		})
	}
}

func TestBase64JSON(t *testing.T) {
	t.Parallel()
	blob := base64.StdEncoding.EncodeToString([]byte(`{"currentSlide":5,"title":"Intro course"}`))
	res, ok := Decode(blob)
	require.True(t, ok)
	assert.Equal(t, KindBase64JSON, res.Kind)
	assert.Equal(t, 5, res.Current)

	modified := ModifyPosition(blob, 11)
	decoded, err := base64.StdEncoding.DecodeString(modified)
	require.NoError(t, err)
	assert.Equal(t, `{"currentSlide":11,"title":"Intro course"}`, string(decoded))
}

func TestURLEncoded(t *testing.T) {
	t.Parallel()
	got, ok := ParsePosition("page=3&foo=bar")
	require.True(t, ok)
	assert.Equal(t, 3, got)
	assert.Equal(t, "page=9&foo=bar", ModifyPosition("page=3&foo=bar", 9))
}

func TestPlainTextPatterns(t *testing.T) {
	t.Parallel()
	cases := map[string]int{
		"bookmark=0_11;":          12,
		"resume: 4":               5,
		"currentSlide = 2; x":     3,
		"CurrentSlideIndex:9|foo": 10,
	}
	for blob, want := range cases {
		got, ok := ParsePosition(blob)
		require.True(t, ok, blob)
		assert.Equal(t, want, got, blob)
	}

	_, ok := ParsePosition("values 3_4 here")
	assert.False(t, ok, "unguarded digit pairs must not decode")
}

func TestUnknownShapesAreReturnedByteIdentical(t *testing.T) {
	t.Parallel()
	for _, blob := range []string{"", "hello world", "x|y|z", `{"title":"no position"}`, "5"} {
		assert.Equal(t, blob, ModifyPosition(blob, 4), blob)
	}
}

func TestVisitedFurthest(t *testing.T) {
	t.Parallel()
	got, ok := VisitedFurthest("cs=1,vs=0:1:2:3:4:5,qt=0")
	require.True(t, ok)
	assert.Equal(t, 6, got)

	_, ok = VisitedFurthest("plain words only")
	assert.False(t, ok)
	_, ok = VisitedFurthest("")
	assert.False(t, ok)
}

func TestModifyPositionLeavesNestedLookAlikesAlone(t *testing.T) {
	t.Parallel()
	cases := map[string]struct {
		blob string
		want string
	}{
		"media position": {
			blob: `{"slide":2,"media":{"position":5400}}`,
			want: `{"slide":6,"media":{"position":5400}}`,
		},
		"quiz current": {
			blob: `{"currentSlide":3,"quiz":{"current":12}}`,
			want: `{"currentSlide":6,"quiz":{"current":12}}`,
		},
		"only the field that was read": {
			blob: `{"slide":2, "position":40}`,
			want: `{"slide":6, "position":40}`,
		},
		"storyline audio": {
			blob: `{"resume":"0_2","audio":{"position":9000,"l":3},"l":2}`,
			want: `{"resume":"0_5","audio":{"position":9000,"l":3},"l":5}`,
		},
		"nested resume is not the resume": {
			blob: `{"d":[{"n":"Resume","v":"1_1"}],"cache":{"resume":"4_4"}}`,
			want: `{"d":[{"n":"Resume","v":"1_5"}],"cache":{"resume":"4_4"}}`,
		},
		"whitespace and key order kept": {
			blob: "{\n  \"title\": \"Intro\",\n  \"slide\" : \"3\",\n  \"media\": {\"slide\": 1}\n}",
			want: "{\n  \"title\": \"Intro\",\n  \"slide\" : \"6\",\n  \"media\": {\"slide\": 1}\n}",
		},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ModifyPosition(tc.blob, 6))
		})
	}
}

func TestCompressedStorylineKeepsNestedFields(t *testing.T) {
	t.Parallel()
	blob := CompressToBase64(`{"resume":"0_2","audio":{"position":9000},"l":2}`)
	inner, ok := DecompressFromBase64(ModifyPosition(blob, 6))
	require.True(t, ok)
	assert.Equal(t, `{"resume":"0_5","audio":{"position":9000},"l":5}`, inner)
}

func TestURLEncodedRewritesOnlyTheKeyRead(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "slide=6&page=9", ModifyPosition("slide=3&page=9", 6))
	assert.Equal(t, "page=6&seen=4&current=0", ModifyPosition("page=2&seen=4&current=0", 6))
	assert.Equal(t, "lang=en&current=6", ModifyPosition("lang=en&current=2", 6))
}
