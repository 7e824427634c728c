package csvexport_test

import (
	"strings"
	"testing"

	"github.com/dracory/querybase/shared/csvexport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "union of keys with blanks",
			data: `[{"a":1},{"b":2}]`,
			want: "a,b\n1,\n,2\n",
		},
		{
			name: "sorted header",
			data: `[{"z":"last","a":"first","m":null}]`,
			want: "a,m,z\nfirst,,last\n",
		},
		{
			name: "numbers keep their text",
			data: `[{"n":1.50,"big":12345678901234567890}]`,
			want: "big,n\n12345678901234567890,1.50\n",
		},
		{
			name: "nested values are json",
			data: `[{"tags":["x","y"],"ok":true}]`,
			want: "ok,tags\ntrue,\"[\"\"x\"\",\"\"y\"\"]\"\n",
		},
		{
			name: "single object",
			data: `{"a":"x"}`,
			want: "a\nx\n",
		},
		{
			name: "non-object items",
			data: `[1,"two"]`,
			want: "\n1\ntwo\n",
		},
		{
			name: "invalid json",
			data: `not json`,
			want: "raw_data\nnot json\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			require.NoError(t, csvexport.Write(&b, tt.data))
			assert.Equal(t, tt.want, b.String())
		})
	}
}
