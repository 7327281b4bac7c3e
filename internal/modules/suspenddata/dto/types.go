package dto

type DecodeInput struct {
	Blob string
}

type DecodeOutput struct {
	Found    bool
	Kind     string
	Current  int
	Furthest int
	// Inner is the decompressed or decoded payload for Base64 shapes.
	Inner string
}

type EncodeInput struct {
	Blob   string
	Target int
}

type EncodeOutput struct {
	Blob    string
	Changed bool
}
