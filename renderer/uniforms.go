package renderer

import (
	"reflect"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/fractal4d/logger"
	"github.com/stewi1014/fractal4d/programs"
)

type uniformSetter func(location, count int32, ptr unsafe.Pointer)

var uniformSetters = map[reflect.Type]uniformSetter{
	reflect.TypeOf(float32(0)): func(l, n int32, p unsafe.Pointer) {
		gl.Uniform1fv(l, n, (*float32)(p))
	},
	reflect.TypeOf(int32(0)): func(l, n int32, p unsafe.Pointer) {
		gl.Uniform1iv(l, n, (*int32)(p))
	},
	reflect.TypeOf(uint32(0)): func(l, n int32, p unsafe.Pointer) {
		gl.Uniform1uiv(l, n, (*uint32)(p))
	},
	reflect.TypeOf(mgl32.Vec2{}): func(l, n int32, p unsafe.Pointer) {
		gl.Uniform2fv(l, n, (*float32)(p))
	},
	reflect.TypeOf(mgl32.Vec3{}): func(l, n int32, p unsafe.Pointer) {
		gl.Uniform3fv(l, n, (*float32)(p))
	},
	reflect.TypeOf(mgl32.Vec4{}): func(l, n int32, p unsafe.Pointer) {
		gl.Uniform4fv(l, n, (*float32)(p))
	},
	reflect.TypeOf(mgl32.Mat4{}): func(l, n int32, p unsafe.Pointer) {
		gl.UniformMatrix4fv(l, n, false, (*float32)(p))
	},
}

// uniformLocations looks up the location of every tagged field of uniforms.
// Fields the program does not use get location -1, which GL ignores.
func uniformLocations(program uint32, uniforms programs.Uniforms) map[string]int32 {
	locations := make(map[string]int32)
	t := reflect.TypeOf(uniforms)
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("uniform")
		if name == "" {
			continue
		}
		locations[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	}
	return locations
}

// loadUniforms uploads every tagged field of uniforms to the program in use.
// Array fields upload as uniform arrays of their element type.
func loadUniforms(uniforms *programs.Uniforms, locations map[string]int32) {
	v := reflect.ValueOf(uniforms).Elem()
	for i := 0; i < v.NumField(); i++ {
		name := v.Type().Field(i).Tag.Get("uniform")
		loc, ok := locations[name]
		if !ok || loc < 0 {
			continue
		}

		f := v.Field(i)
		count := int32(1)
		setter, ok := uniformSetters[f.Type()]
		if !ok && f.Kind() == reflect.Array && f.Len() > 0 {
			count = int32(f.Len())
			setter, ok = uniformSetters[f.Type().Elem()]
		}
		if !ok {
			logger.Logger().Warn("unsupported uniform type", "uniform", name, "type", f.Type())
			continue
		}

		setter(loc, count, f.Addr().UnsafePointer())
	}
}
