package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwbasic/internal/berrors"
)

func TestSaveLoad(t *testing.T) {

	ip, _ := newInterp(t, "")
	load(t, ip,
		`10 A=2`,
		`20 PRINT "sum";A+3`,
	)

	var text, image bytes.Buffer
	require.NoError(t, ip.Save(&text, false))
	require.NoError(t, ip.Save(&image, true))
	assert.Equal(t, "10 A=2\r\n20 PRINT \"sum\";A+3\r\n", text.String())
	assert.Equal(t, byte(imageMark), image.Bytes()[0])

	for _, src := range []*bytes.Buffer{&text, &image} {
		other, out := newInterp(t, "")
		load(t, other, "5 PRINT 1")
		require.NoError(t, other.Load(src))
		require.NoError(t, other.Run())
		assert.Equal(t, "sum 5 \n", out.String())
	}
}

func TestLoadErrors(t *testing.T) {

	ip, out := newInterp(t, "")
	load(t, ip, `10 PRINT "kept"`)

	err := ip.Load(strings.NewReader("10 PRINT 1\nPRINT 2\n"))
	require.Error(t, err)
	assert.Equal(t, berrors.DirectStatementInFile, berrors.CodeOf(err))

	err = ip.Load(bytes.NewReader([]byte{imageMark, 9, 9}))
	require.Error(t, err)

	require.NoError(t, ip.Run())
	assert.Equal(t, "kept\n", out.String())
}
