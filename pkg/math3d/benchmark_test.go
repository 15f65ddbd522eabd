package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	m := Compose(V3(1, 2, 3), QuatFromAxisAngle(Up(), 0.5), Splat3(2))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec3(v)
	}
}

func BenchmarkCompose(b *testing.B) {
	q := QuatFromAxisAngle(V3(1, 1, 0), 0.7)

	for b.Loop() {
		_ = Compose(V3(1, 2, 3), q, V3(1, 2, 3))
	}
}

func BenchmarkDecompose(b *testing.B) {
	m := Compose(V3(1, 2, 3), QuatFromAxisAngle(V3(1, 1, 0), 0.7), V3(1, 2, 3))

	for b.Loop() {
		_, _, _ = m.Decompose()
	}
}
