package types

import (
	"math"
	"testing"
)

func approxEq(a, b Vec3) bool {
	return math.Abs(float64(a[0]-b[0])) < 1e-5 &&
		math.Abs(float64(a[1]-b[1])) < 1e-5 &&
		math.Abs(float64(a[2]-b[2])) < 1e-5
}

func TestVec3Reflect(t *testing.T) {
	type spec struct {
		in     Vec3
		normal Vec3
		exp    Vec3
	}
	specs := []spec{
		{XYZ(0, -1, 0), XYZ(0, 1, 0), XYZ(0, 1, 0)},
		{XYZ(1, -1, 0), XYZ(0, 1, 0), XYZ(1, 1, 0)},
		{XYZ(0, 0, -1), XYZ(0, 0, 1), XYZ(0, 0, 1)},
		{XYZ(1, 0, 0), XYZ(0, 1, 0), XYZ(1, 0, 0)},
	}

	for index, s := range specs {
		out := s.in.Reflect(s.normal)
		if !approxEq(out, s.exp) {
			t.Fatalf("[spec %d] expected reflection to be %v; got %v", index, s.exp, out)
		}
	}
}

func TestVec3Normalize(t *testing.T) {
	v := XYZ(3, 0, 4).Normalize()
	if !approxEq(v, XYZ(0.6, 0, 0.8)) {
		t.Fatalf("expected normalized vector to be (0.6, 0, 0.8); got %v", v)
	}

	if z := (Vec3{}).Normalize(); !z.IsZero() {
		t.Fatalf("expected zero vector to normalize to zero; got %v", z)
	}
}

func TestVec2Mul(t *testing.T) {
	type spec struct {
		in    Vec2
		scale float32
		exp   Vec2
	}
	specs := []spec{
		{XY(1, 2), 3, XY(3, 6)},
		{XY(-0.5, 0.25), 4, XY(-2, 1)},
		{XY(7, -7), 0, XY(0, 0)},
	}

	for index, s := range specs {
		if out := s.in.Mul(s.scale); out != s.exp {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, out)
		}
	}
}

func TestSaturate(t *testing.T) {
	specs := [][2]float32{{-1, 0}, {0.5, 0.5}, {2, 1}}
	for index, s := range specs {
		if out := Saturate(s[0]); out != s[1] {
			t.Fatalf("[spec %d] expected saturate(%f) to be %f; got %f", index, s[0], s[1], out)
		}
	}
}

func TestMatrixPointAndDirTransforms(t *testing.T) {
	m := Translate4(XYZ(1, 2, 3))

	if p := m.MulPoint(Vec3{}); !approxEq(p, XYZ(1, 2, 3)) {
		t.Fatalf("expected translated origin to be (1, 2, 3); got %v", p)
	}
	if d := m.MulDir(XYZ(0, 0, -1)); !approxEq(d, XYZ(0, 0, -1)) {
		t.Fatalf("expected directions to ignore translation; got %v", d)
	}

	inv := m.Inv()
	if p := inv.MulPoint(XYZ(1, 2, 3)); !approxEq(p, Vec3{}) {
		t.Fatalf("expected inverse translation to map back to origin; got %v", p)
	}
}

func TestQuatRotationMatchesMatrix(t *testing.T) {
	q := QuatFromAxisAngle(XYZ(0, 1, 0), float32(math.Pi/2))

	v := XYZ(0, 0, -1)
	byQuat := q.Rotate(v)
	byMat := q.Mat4().MulDir(v)

	if !approxEq(byQuat, byMat) {
		t.Fatalf("expected quaternion and matrix rotations to agree; got %v and %v", byQuat, byMat)
	}
	if !approxEq(byQuat, XYZ(-1, 0, 0)) {
		t.Fatalf("expected a 90 degree yaw to rotate -Z into -X; got %v", byQuat)
	}
}
