// main.go -- command line driver for densedb
//
// demo reproduces the canonical create/fill/sync/reopen exercise this
// package was built against: a "foo" table with a mixed narrow-field
// and wide-raw-field schema, filled with a repeating residue pattern.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package main

import (
	"fmt"
	"os"

	"github.com/opencoff/go-densedb"

	flag "github.com/opencoff/pflag"
)

func main() {
	usage := fmt.Sprintf("%s [options] demo DIR AMOUNT | create DIR NAME ROWS SCHEMA | dump DIR NAME", os.Args[0])

	var maxOpen int
	flag.IntVarP(&maxOpen, "max-open", "m", 1, "Keep at most `N` tables mapped at once")
	flag.Usage = func() {
		fmt.Printf("densedb - exercise the bit-dense row store\nUsage: %s\n", usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		die("no subcommand given\nUsage: %s", usage)
	}

	switch args[0] {
	case "demo":
		cmdDemo(args[1:], maxOpen)
	case "create":
		cmdCreate(args[1:], maxOpen)
	case "dump":
		cmdDump(args[1:], maxOpen)
	default:
		die("unknown subcommand %q\nUsage: %s", args[0], usage)
	}
}

func cmdDemo(args []string, maxOpen int) {
	if len(args) != 2 {
		die("demo: usage: demo DIR AMOUNT")
	}
	dir := args[0]
	amount, err := parseAmount(args[1])
	if err != nil {
		die("demo: %s", err)
	}

	db, err := densedb.New(dir, maxOpen)
	if err != nil {
		die("can't open store at %s: %s", dir, err)
	}

	foo := "There's no place like home"
	fields := []densedb.Field{
		{Name: "bar", Size: 4},
		{Name: "foo", Size: uint32(8 * (len(foo) + 1))},
		{Name: "baz", Size: 4},
		{Name: "bop", Size: 3},
		{Name: "bip", Size: 2},
		{Name: "bip2", Size: 2},
	}

	table, err := db.Create("foo", fields, uint64(amount))
	if err != nil {
		die("can't create table foo: %s", err)
	}
	table.Close()

	table, err = db.Open("foo")
	if err != nil {
		die("can't reopen table foo: %s", err)
	}

	accs := make([]densedb.Accessor, len(fields))
	for i, f := range fields {
		accs[i], err = table.Accessor(f.Name)
		if err != nil {
			die("can't resolve accessor %s: %s", f.Name, err)
		}
	}

	fooBytes := make([]byte, (accs[1].Size+63)/64*8)
	copy(fooBytes, foo)

	for i := 0; i < amount; i++ {
		row := uint64(i)
		if err := table.Set(row, accs[1], fooBytes); err != nil {
			die("row %d: set foo: %s", i, err)
		}
		mustSetInt(table, row, accs[0], uint64(i%16))
		mustSetInt(table, row, accs[2], uint64(i%12))
		mustSetInt(table, row, accs[3], uint64(i%4))
		mustSetInt(table, row, accs[4], uint64(i%2))
		mustSetInt(table, row, accs[5], uint64(i%2))
	}

	if err := table.Sync(); err != nil {
		die("sync: %s", err)
	}

	ppStats(table, fields)
	pp(table, fields, accs, amount)

	table.Close()

	table2, err := db.Create("foo2", fields, uint64(amount))
	if err != nil {
		die("can't create table foo2: %s", err)
	}
	table2.Close()

	if err := db.Close(); err != nil {
		die("close store: %s", err)
	}
}

func cmdCreate(args []string, maxOpen int) {
	if len(args) != 4 {
		die("create: usage: create DIR NAME ROWS SCHEMA")
	}
	dir, name := args[0], args[1]
	rows, err := parseAmount(args[2])
	if err != nil {
		die("create: %s", err)
	}
	fields, err := parseSchemaString(args[3])
	if err != nil {
		die("create: %s", err)
	}

	db, err := densedb.New(dir, maxOpen)
	if err != nil {
		die("can't open store at %s: %s", dir, err)
	}
	defer db.Close()

	table, err := db.Create(name, fields, uint64(rows))
	if err != nil {
		die("can't create table %s: %s", name, err)
	}
	defer table.Close()

	fmt.Printf("created %s: %d rows, schema %s\n", name, rows, schemaString(table.Schema()))
}

func cmdDump(args []string, maxOpen int) {
	if len(args) != 2 {
		die("dump: usage: dump DIR NAME")
	}
	dir, name := args[0], args[1]

	db, err := densedb.New(dir, maxOpen)
	if err != nil {
		die("can't open store at %s: %s", dir, err)
	}
	defer db.Close()

	table, err := db.Open(name)
	if err != nil {
		die("can't open table %s: %s", name, err)
	}
	defer table.Close()

	fields := table.Schema()
	accs := make([]densedb.Accessor, len(fields))
	for i, f := range fields {
		accs[i], err = table.Accessor(f.Name)
		if err != nil {
			die("can't resolve accessor %s: %s", f.Name, err)
		}
	}

	ppStats(table, fields)
	for row := uint64(0); row < table.Rows(); row++ {
		for i, f := range fields {
			if f.Size <= 64 {
				v, err := table.GetInt(row, accs[i])
				if err != nil {
					die("row %d field %s: %s", row, f.Name, err)
				}
				fmt.Printf("%s=%d ", f.Name, v)
				continue
			}
			buf := make([]byte, (uint64(f.Size)+63)/64*8)
			if err := table.Get(row, accs[i], buf); err != nil {
				die("row %d field %s: %s", row, f.Name, err)
			}
			fmt.Printf("%s=%x ", f.Name, buf)
		}
		fmt.Println()
	}
}

func mustSetInt(table *densedb.Table, row uint64, acc densedb.Accessor, v uint64) {
	if err := table.SetInt(row, acc, v); err != nil {
		die("row %d: set int: %s", row, err)
	}
}

func ppStats(table *densedb.Table, fields []densedb.Field) {
	fmt.Printf("Rows: %d\nFields:\n", table.Rows())
	for _, f := range fields {
		fmt.Printf("  %s:\t%d\n", f.Name, f.Size)
	}
}

func pp(table *densedb.Table, fields []densedb.Field, accs []densedb.Accessor, amount int) {
	for i, f := range fields {
		sep := "\t"
		if i == len(fields)-1 {
			sep = "\n"
		}
		fmt.Printf("%s%s", f.Name, sep)
	}

	for row := 0; row < amount; row++ {
		var fooBuf [32]byte
		if err := table.Get(uint64(row), accs[1], fooBuf[:]); err != nil {
			die("row %d: get foo: %s", row, err)
		}
		bar, _ := table.GetInt(uint64(row), accs[0])
		baz, _ := table.GetInt(uint64(row), accs[2])
		bop, _ := table.GetInt(uint64(row), accs[3])
		bip, _ := table.GetInt(uint64(row), accs[4])
		bip2, _ := table.GetInt(uint64(row), accs[5])

		fmt.Printf("%d\t%s\t%d\t%d\t%d\t%d\n", bar, cString(fooBuf[:]), baz, bop, bip, bip2)
	}
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func parseAmount(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("bad AMOUNT %q", s)
	}
	return n, nil
}

func die(f string, v ...interface{}) {
	warn(f, v...)
	os.Exit(1)
}

func warn(f string, v ...interface{}) {
	z := fmt.Sprintf("%s: %s", os.Args[0], f)
	s := fmt.Sprintf(z, v...)
	if n := len(s); s[n-1] != '\n' {
		s += "\n"
	}
	os.Stderr.WriteString(s)
	os.Stderr.Sync()
}
