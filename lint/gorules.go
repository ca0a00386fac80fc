// Run `golangci-lint cache clean` after modifying this file.

package gorules

import (
	"github.com/quasilyte/go-ruleguard/dsl"
)

func sleeps(m dsl.Matcher) {
	m.Match(`time.Sleep($_)`).
		Report(`time.Sleep is disallowed, wait through crawler.Clock so tests can skip the delay`)
}

func printing(m dsl.Matcher) {
	m.Match(`fmt.Print($*_)`, `fmt.Println($*_)`, `fmt.Printf($*_)`).
		Where(!m.File().PkgPath.Matches(`^catalogcrawl(/cmd/.*)?$`)).
		Report(`print through the logger outside of main and cmd`)
}

func storeWrites(m dsl.Matcher) {
	m.Match(`os.WriteFile($*_)`, `os.Create($*_)`).
		Where(m.File().PkgPath.Matches(`^catalogcrawl/catalog$`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`catalog files are written through writeFileAtomic`)
}
