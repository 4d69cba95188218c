package thinning

import (
	"math"

	. "github.com/janelia-flyem/go/gocheck"
)

func (s *DataSuite) TestIndexRoundTrip(c *C) {
	shapes := []GridShape{
		{1, 1, 1},
		{4, 4, 4},
		{3, 5, 7},
		{7, 2, 11},
	}
	for _, shape := range shapes {
		for z := int32(0); int64(z) < shape[AxisZ]; z++ {
			for y := int32(0); int64(y) < shape[AxisY]; y++ {
				for x := int32(0); int64(x) < shape[AxisX]; x++ {
					pt := Point3d{x, y, z}
					index := shape.Index(pt)
					c.Assert(shape.ContainsIndex(index), Equals, true)
					c.Assert(shape.Coords(index), Equals, pt)
				}
			}
		}
	}
	shape := GridShape{3, 5, 7}
	c.Assert(shape.Index(Point3d{1, 2, 1}), Equals, int64(1*35+2*7+1))
	c.Assert(shape.Contains(Point3d{7, 0, 0}), Equals, false)
	c.Assert(shape.Contains(Point3d{6, 4, 2}), Equals, true)
	c.Assert(shape.Contains(Point3d{-1, 0, 0}), Equals, false)
}

func (s *DataSuite) TestDownsampleRatio(c *C) {
	r, err := DownsampleRatio(Resolution{30, 6, 6}, Resolution{60, 24, 24})
	c.Assert(err, IsNil)
	c.Assert(r, Equals, Ratio{2, 4, 4})

	coarse := r.CoarseShape(GridShape{5, 10, 16})
	c.Assert(coarse, Equals, GridShape{3, 3, 4})

	c.Assert(r.Down(Point3d{15, 9, 4}), Equals, Point3d{3, 2, 2})

	_, err = DownsampleRatio(Resolution{0, 6, 6}, Resolution{60, 24, 24})
	c.Assert(err, NotNil)
}

func (s *DataSuite) TestBlock(c *C) {
	r := Ratio{2, 2, 2}
	fine := GridShape{4, 4, 4}

	min, max := r.Block(Point3d{0, 0, 0}, fine)
	c.Assert(min, Equals, Point3d{0, 0, 0})
	c.Assert(max, Equals, Point3d{3, 3, 3})

	// upper block is clipped to the grid
	min, max = r.Block(Point3d{1, 1, 1}, fine)
	c.Assert(min, Equals, Point3d{2, 2, 2})
	c.Assert(max, Equals, Point3d{4, 4, 4})

	// non-integer ratio
	r = Ratio{1, 1, 1.5}
	min, max = r.Block(Point3d{1, 0, 0}, GridShape{10, 10, 10})
	c.Assert(min, Equals, Point3d{1, 0, 0})
	c.Assert(max, Equals, Point3d{4, 2, 2})
}

func (s *DataSuite) TestVector3d(c *C) {
	v := Vector3d{3, 0, 4}
	c.Assert(v.Length(), Equals, 5.0)
	n := v.Normalize()
	c.Assert(math.Abs(n.Length()-1) < 1e-12, Equals, true)
	c.Assert(n, Equals, Vector3d{0.6, 0, 0.8})

	var zero Vector3d
	c.Assert(zero.Normalize(), Equals, zero)
	c.Assert(zero.IsZero(), Equals, true)

	a := Point3d{1, 2, 3}
	b := Point3d{4, 0, 3}
	c.Assert(a.ManhattanDistance(b), Equals, int64(5))
	c.Assert(a.Sub(b).Vector3d(), Equals, Vector3d{-3, 2, 0})

	p, err := StringToPoint3d("10, 20,30", ",")
	c.Assert(err, IsNil)
	c.Assert(p, Equals, Point3d{10, 20, 30})
	_, err = StringToPoint3d("10,20", ",")
	c.Assert(err, NotNil)
}
