package thinning

import (
	"bytes"

	. "github.com/janelia-flyem/go/gocheck"
)

func (s *DataSuite) TestVolumeSerialization(c *C) {
	shape := GridShape{2, 3, 4}
	labels := make([]uint64, shape.NumVoxels())
	for i := range labels {
		labels[i] = uint64(i % 5)
	}
	vol, err := NewVolume(shape, labels)
	c.Assert(err, IsNil)

	maxLabel, err := vol.MaxLabel()
	c.Assert(err, IsNil)
	c.Assert(maxLabel, Equals, uint64(5))
	c.Assert(vol.LabelAt(Point3d{3, 2, 1}), Equals, labels[23])

	for _, compress := range []Compression{Uncompressed, Gzip, Zstd, Snappy, LZ4} {
		var buf bytes.Buffer
		c.Assert(vol.Write(&buf, compress), IsNil)

		vol2, err := ReadVolume(&buf, shape, compress)
		c.Assert(err, IsNil)
		c.Assert(vol2.Labels, DeepEquals, labels)
	}

	var buf bytes.Buffer
	c.Assert(vol.Write(&buf, Uncompressed), IsNil)
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-8])
	_, err = ReadVolume(truncated, shape, Uncompressed)
	c.Assert(err, NotNil)

	_, err = NewVolume(shape, labels[1:])
	c.Assert(err, NotNil)
}

func (s *DataSuite) TestParseCompression(c *C) {
	for _, compress := range []Compression{Uncompressed, Gzip, Zstd, Snappy, LZ4} {
		parsed, err := ParseCompression(compress.String())
		c.Assert(err, IsNil)
		c.Assert(parsed, Equals, compress)
	}
	_, err := ParseCompression("bzip3")
	c.Assert(err, NotNil)
}
