package programs

func init() {
	NewProgram(Program{
		Name:           "Quadratic (z² + c)",
		VertexShader:   defaultVertexShader,
		FragmentShader: mustShader("quadratic.frag"),
	})
	NewProgram(Program{
		Name:           "Cubic (z³ + c)",
		VertexShader:   defaultVertexShader,
		FragmentShader: mustShader("cubic.frag"),
	})
}
