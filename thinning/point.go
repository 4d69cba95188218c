package thinning

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point3d is an (x, y, z) voxel coordinate.
type Point3d [3]int32

// Add returns the addition of two points.
func (p Point3d) Add(p2 Point3d) Point3d {
	return Point3d{p[0] + p2[0], p[1] + p2[1], p[2] + p2[2]}
}

// Sub returns the subtraction of the passed point from the receiver.
func (p Point3d) Sub(p2 Point3d) Point3d {
	return Point3d{p[0] - p2[0], p[1] - p2[1], p[2] - p2[2]}
}

// ManhattanDistance returns the L1 distance between two points.
func (p Point3d) ManhattanDistance(p2 Point3d) int64 {
	var dist int64
	for i := 0; i < 3; i++ {
		d := int64(p[i]) - int64(p2[i])
		if d < 0 {
			d = -d
		}
		dist += d
	}
	return dist
}

// Vector3d returns the point as a floating point vector.
func (p Point3d) Vector3d() Vector3d {
	return Vector3d{float64(p[0]), float64(p[1]), float64(p[2])}
}

func (p Point3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p[0], p[1], p[2])
}

// StringToPoint3d parses a string of format "%d<sep>%d<sep>%d" into a Point3d.
func StringToPoint3d(str, separator string) (p Point3d, err error) {
	elems := strings.Split(str, separator)
	if len(elems) != 3 {
		err = fmt.Errorf("cannot convert %q into a 3d point", str)
		return
	}
	for i, elem := range elems {
		var n int64
		n, err = strconv.ParseInt(strings.TrimSpace(elem), 10, 32)
		if err != nil {
			return
		}
		p[i] = int32(n)
	}
	return
}

// Vector3d is a 3D vector of 64-bit floats in (x, y, z) order.
type Vector3d [3]float64

// Subtract returns the difference of the receiver and passed vector.
func (v Vector3d) Subtract(x Vector3d) Vector3d {
	return Vector3d{v[0] - x[0], v[1] - x[1], v[2] - x[2]}
}

func (v Vector3d) DivideScalar(x float64) Vector3d {
	return Vector3d{v[0] / x, v[1] / x, v[2] / x}
}

// Length returns the Euclidean norm of the vector.
func (v Vector3d) Length() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// IsZero returns true if all components are zero.
func (v Vector3d) IsZero() bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// Normalize returns the unit vector in the direction of v.  The zero vector
// cannot be normalized and is returned unchanged.
func (v Vector3d) Normalize() Vector3d {
	length := v.Length()
	if length == 0 {
		return v
	}
	return v.DivideScalar(length)
}

func (v Vector3d) String() string {
	return fmt.Sprintf("(%.3f,%.3f,%.3f)", v[0], v[1], v[2])
}
