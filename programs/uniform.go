package programs

// Uniforms holds the values uploaded to every program before drawing.
// Each field is bound to the uniform named in its tag.
type Uniforms struct {
	ColorStretching float32 `uniform:"uColorStretching"`
}
