// Package tickers holds the static universe of symbols the extractor covers.
package tickers

// bist100 lists the BIST100 constituents with the Yahoo Finance ".IS"
// exchange suffix. Order matters: the pipeline fetches and emits rows in
// exactly this order.
var bist100 = [...]string{
	"BTCIM.IS", "KOZAL.IS", "VESTL.IS", "TCELL.IS", "KUYAS.IS",
	"TTKOM.IS", "PETKM.IS", "MGROS.IS", "SISE.IS", "ENKAI.IS",
	"ISMEN.IS", "AKSEN.IS", "TSKB.IS", "HALKB.IS", "YKBNK.IS",
	"VAKBN.IS", "DOAS.IS", "ZOREN.IS", "DOHOL.IS", "SKBNK.IS",
	"GSRAY.IS", "KOZAA.IS", "TTRAK.IS", "FENER.IS", "TKFEN.IS",
	"GARAN.IS", "AKBNK.IS", "CLEBI.IS", "TOASO.IS", "TUPRS.IS",
	"BIMAS.IS", "ANSGR.IS", "FROTO.IS", "ASELS.IS", "KRDMD.IS",
	"CIMSA.IS", "BRSAN.IS", "ODAS.IS", "BSOKE.IS", "KCHOL.IS",
	"IPEKE.IS", "CCOLA.IS", "AEFES.IS", "ULKER.IS", "EGEEN.IS",
	"BRYAT.IS", "OTKAR.IS", "THYAO.IS", "ALARK.IS", "HEKTS.IS",
	"IEYHO.IS", "SAHOL.IS", "AKSA.IS", "TAVHL.IS", "PGSUS.IS",
	"ARCLK.IS", "SASA.IS", "EREGL.IS", "ISCTR.IS", "EKGYO.IS",
	"GUBRF.IS", "MAVI.IS", "BERA.IS", "AGHOL.IS", "ENJSA.IS",
	"MPARK.IS", "RALYH.IS", "SOKM.IS", "OYAKC.IS", "TURSG.IS",
	"KONTR.IS", "TUREX.IS", "CANTE.IS", "GENIL.IS", "GESAN.IS",
	"YEOTK.IS", "MAGEN.IS", "MIATK.IS", "GRSEL.IS", "SMRTG.IS",
	"KCAER.IS", "ALFAS.IS", "ASTOR.IS", "EUPWR.IS", "CWENE.IS",
	"KTLEV.IS", "PASEU.IS", "ENERY.IS", "REEDR.IS", "TABGD.IS",
	"BINHO.IS", "AVPGY.IS", "LMKDC.IS", "OBAMS.IS", "ALTNY.IS",
	"EFORC.IS", "GRTHO.IS", "GLRMK.IS", "DSTKF.IS", "BALSU.IS",
}

// BIST100 returns a fresh copy of the constituent list so callers can never
// mutate the shared universe.
func BIST100() []string {
	out := make([]string, len(bist100))
	copy(out, bist100[:])
	return out
}
