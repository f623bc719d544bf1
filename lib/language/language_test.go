package language

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	p := New([]string{"es", "zh"})

	require.Equal(t, []string{"unicorn horn"}, p.Expand("unicorn horn"))
	require.Equal(t, []string{"ivory", "marfil", "象牙", "牙雕"}, p.Expand("ivory"))
	require.Equal(t, []string{"Pangolin", "pangolín", "穿山甲"}, p.Expand("Pangolin"))
}

func TestExpandAll(t *testing.T) {
	p := New([]string{"fr"})
	require.Equal(
		t,
		[]string{"pangolin", "ivory", "ivoire"},
		p.ExpandAll([]string{"pangolin", "ivory", "ivory"}),
	)
}

func TestFold(t *testing.T) {
	require.Equal(t, "corne de rhinoceros", Fold("  Corne de   Rhinocéros "))
	require.Equal(t, "escamas de pangolin", Fold("ESCAMAS de pangolín"))
	require.Equal(t, "象牙", Fold("象牙"))
}

func TestDetect(t *testing.T) {
	p := New(nil)
	require.Equal(t, "zh", p.Detect("正品老象牙手镯"))
	require.Equal(t, "th", p.Detect("ขายงาช้างแท้"))
	require.Equal(t, "vi", p.Detect("bán sừng tê giác"))
	require.Equal(t, "id", p.Detect("jual sisik trenggiling asli"))
	require.Equal(t, "en", p.Detect("vintage wooden carving"))
}

func TestLanguages(t *testing.T) {
	require.Equal(t, []string{"es"}, New([]string{"es"}).Languages())
	all := New(nil).Languages()
	require.Contains(t, all, "sw")
	require.Contains(t, all, "zh")
}
