package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitNameAddress_Strategies(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantName     string
		wantAddr     string
		wantStrategy string
	}{
		{"address lines", "JOHN SMITH\n123 MAIN ST\nAUSTIN, TX 78701", "JOHN SMITH", "123 MAIN ST, AUSTIN, TX 78701", "lines"},
		{"street shares the name line", "JOHN SMITH, 123 MAIN ST\nAUSTIN, TX 78701", "JOHN SMITH", "123 MAIN ST, AUSTIN, TX 78701", "lines"},
		{"inline comma before street", "JOHN SMITH, 123 MAIN ST, AUSTIN, TX 78701", "JOHN SMITH", "123 MAIN ST, AUSTIN, TX 78701", "inline"},
		{"inline po box", "JOHN SMITH, PO BOX 7, ODESSA, TX 79761", "JOHN SMITH", "PO BOX 7, ODESSA, TX 79761", "inline"},
		{"bare house number", "JOHN SMITH 123 MAIN ST AUSTIN TX 78701", "JOHN SMITH", "123 MAIN ST AUSTIN TX 78701", "house_number"},
		{"city state zip without commas", "JANE DOE AUSTIN TX 78701", "JANE DOE", "AUSTIN TX 78701", "zip_backward"},
		{"one comma before address", "JANE DOE, RURAL ROUTE 4", "JANE DOE", "RURAL ROUTE 4", "comma_count"},
		{"first of several commas", "ACME OIL COMPANY, GENERAL DELIVERY, MIDLAND TEXAS", "ACME OIL COMPANY", "GENERAL DELIVERY, MIDLAND TEXAS", "comma_count"},
		{"no address", "JOHN SMITH", "JOHN SMITH", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, addr, strategy := splitNameAddress(tt.text)

			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantAddr, addr)
			assert.Equal(t, tt.wantStrategy, strategy)

			pubName, pubAddr := SplitNameAddress(tt.text)
			assert.Equal(t, name, pubName)
			assert.Equal(t, addr, pubAddr)
		})
	}
}
