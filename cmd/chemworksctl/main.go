package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/bulk"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/config"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/report"
	inventoryrpc "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/rpc"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/service"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Chemworks maintenance tool\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  chemworksctl export [-format zip|xlsx] [-o FILE]\n")
	fmt.Fprintf(os.Stderr, "  chemworksctl import [-format zip|xlsx] FILE\n")
	fmt.Fprintf(os.Stderr, "  chemworksctl report [-kind stock|vendor-ledger|production] [-format pdf|csv] [-o FILE]\n")
	fmt.Fprintf(os.Stderr, "  chemworksctl call [-addr HOST:PORT] FUNC [JSON]\n\n")
	fmt.Fprintf(os.Stderr, "export, import and report work on the store named by STORE_DRIVER and STORE_PATH.\n")
	fmt.Fprintf(os.Stderr, "call talks to a running chemworksd packet listener.\n")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "export":
		err = runExport(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "report":
		err = runReport(os.Args[2:])
	case "call":
		err = runCall(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openSession loads the configured store. The caller must run the returned
// close func.
func openSession(ctx context.Context) (*service.Session, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := cfg.OpenStore()
	if err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(cfg.LogLevel)
	logger.SetOutput(os.Stderr)
	sess, err := service.Open(ctx, store, cfg.Settings(), service.WithLogger(logger))
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return sess, closeStore, nil
}

func output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", string(bulk.FormatZip), "archive format: zip or xlsx")
	out := fs.String("o", "", "output file, stdout when empty")
	fs.Parse(args)

	f, err := bulk.ParseFormat(*format)
	if err != nil {
		return err
	}
	sess, closeStore, err := openSession(context.Background())
	if err != nil {
		return err
	}
	defer closeStore()

	w, err := output(*out)
	if err != nil {
		return err
	}
	if err := sess.Export(w, f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	format := fs.String("format", "", "archive format; taken from the file extension when empty")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("import needs exactly one file")
	}
	path := fs.Arg(0)

	raw := *format
	if raw == "" {
		if i := strings.LastIndex(path, "."); i >= 0 {
			raw = path[i+1:]
		}
	}
	f, err := bulk.ParseFormat(raw)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess, closeStore, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	applied, err := sess.Import(ctx, data, f)
	if err != nil {
		return err
	}
	logrus.WithField("tables", applied).Info("import applied")
	return nil
}

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	kind := fs.String("kind", "stock", "stock, vendor-ledger or production")
	format := fs.String("format", string(report.FormatPDF), "pdf or csv")
	vendor := fs.String("vendor", "", "vendor for the ledger report, all when empty")
	product := fs.String("product", "", "product for the production report")
	batch := fs.Int("batch", 0, "batch size for the production report, the saved default when 0")
	out := fs.String("o", "", "output file, stdout when empty")
	fs.Parse(args)

	f, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}
	sess, closeStore, err := openSession(context.Background())
	if err != nil {
		return err
	}
	defer closeStore()

	var rep *report.Report
	switch *kind {
	case "stock":
		rep = sess.StockReport()
	case "vendor-ledger":
		rep = sess.VendorLedgerReport(*vendor)
	case "production":
		rep, err = sess.ProductionReport(service.ProductionRequest{Product: *product, BatchSize: *batch})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown report kind %q", *kind)
	}

	w, err := output(*out)
	if err != nil {
		return err
	}
	if err := report.Render(w, rep, f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func runCall(args []string) error {
	fs := flag.NewFlagSet("call", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:9400", "packet listener address")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("call needs a function name")
	}

	var arg any
	if fs.NArg() > 1 {
		parsed, err := parseJSONArg(fs.Arg(1))
		if err != nil {
			return err
		}
		arg = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	client, err := inventoryrpc.Dial(ctx, *addr)
	if err != nil {
		return err
	}
	defer client.Close()

	var result any
	if err := client.Call(ctx, fs.Arg(0), arg, &result); err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonable(result))
}

// parseJSONArg keeps whole numbers integral so they decode into int fields
// on the server.
func parseJSONArg(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewBufferString(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON argument: %w", err)
	}
	return numbers(v), nil
}

func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = numbers(e)
		}
	case []any:
		for i, e := range t {
			t[i] = numbers(e)
		}
	}
	return v
}

// jsonable rewrites msgpack's map[any]any so encoding/json accepts it.
func jsonable(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = jsonable(e)
		}
		return out
	case map[string]any:
		for k, e := range t {
			t[k] = jsonable(e)
		}
	case []any:
		for i, e := range t {
			t[i] = jsonable(e)
		}
	}
	return v
}
