package integration

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/sconfig"
	"github.com/zoobzio/sconfig/bson"
	"github.com/zoobzio/sconfig/json"
	"github.com/zoobzio/sconfig/msgpack"
	codectest "github.com/zoobzio/sconfig/testing"
	"github.com/zoobzio/sconfig/yaml"
)

var formats = []struct {
	name   string
	format sconfig.Format
}{
	{"json", json.New()},
	{"json compact", json.Compact()},
	{"yaml", yaml.New()},
	{"msgpack", msgpack.New()},
	{"bson", bson.New()},
}

func TestSource_SaveLoad(t *testing.T) {
	codectest.RegisterFixtures(t)
	ctx := context.Background()

	for _, tt := range formats {
		t.Run(tt.name, func(t *testing.T) {
			src, _ := codectest.NewMemorySource(tt.format,
				sconfig.WithSerializerSet(codectest.TestSerializerSet(t)),
				sconfig.WithComments(true),
			)
			want := codectest.SampleServer()
			want.Session = "dropped"

			if err := src.Save(ctx, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := sconfig.LoadAs[*codectest.Server](ctx, src)
			if err != nil {
				t.Fatalf("LoadAs() error = %v", err)
			}

			want.Session = ""
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSource_LoadUntyped(t *testing.T) {
	codectest.RegisterFixtures(t)
	ctx := context.Background()

	for _, tt := range formats {
		t.Run(tt.name, func(t *testing.T) {
			src, _ := codectest.NewMemorySource(tt.format, sconfig.WithSerializerSet(codectest.TestSerializerSet(t)))
			if err := src.Save(ctx, codectest.SampleServer()); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := src.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			srv, ok := got.(*codectest.Server)
			if !ok {
				t.Fatalf("Load() = %T, want *Server", got)
			}
			if srv.Database.URL != "postgres://app:hunter2@db:5432/main" {
				t.Errorf("Database.URL = %q", srv.Database.URL)
			}
		})
	}
}

func TestSource_LoadIntoKeepsIdentity(t *testing.T) {
	codectest.RegisterFixtures(t)
	ctx := context.Background()
	set := codectest.TestSerializerSet(t)

	for _, tt := range formats {
		t.Run(tt.name, func(t *testing.T) {
			src, _ := codectest.NewMemorySource(tt.format, sconfig.WithSerializerSet(set))
			if err := src.Save(ctx, codectest.SampleServer()); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			dst := &codectest.Server{ID: "original", Session: "live"}
			db := &dst.Database
			if err := src.LoadInto(ctx, dst); err != nil {
				t.Fatalf("LoadInto() error = %v", err)
			}

			if dst.ID != "original" {
				t.Errorf("ID = %q, immutable field overwritten", dst.ID)
			}
			if dst.Session != "live" {
				t.Errorf("Session = %q, transient field overwritten", dst.Session)
			}
			if dst.Port != 25566 || dst.Token != "s3cr3t" {
				t.Errorf("LoadInto() = %+v", dst)
			}
			if db.Pool != 8 {
				t.Errorf("Database.Pool = %d, want 8", db.Pool)
			}
		})
	}
}

func TestSource_MissingKeysTakeDefaults(t *testing.T) {
	codectest.RegisterFixtures(t)
	ctx := context.Background()

	storage := codectest.NewMemoryStorage([]byte(`{"=$$=": "Server", "name": "bare"}`))
	src := sconfig.NewSource(storage, json.New())

	got, err := sconfig.LoadAs[*codectest.Server](ctx, src)
	if err != nil {
		t.Fatalf("LoadAs() error = %v", err)
	}
	if got.Name != "bare" || got.Port != 25565 || got.Timeout != 30*time.Second {
		t.Errorf("LoadAs() = %+v", got)
	}
}

func TestSource_Empty(t *testing.T) {
	ctx := context.Background()
	src, _ := codectest.NewMemorySource(yaml.New())

	got, err := src.Load(ctx)
	if err != nil || got != nil {
		t.Errorf("Load() = %v, %v; want nil, nil", got, err)
	}
	if _, err := sconfig.LoadAs[*codectest.Server](ctx, src); !errors.Is(err, sconfig.ErrNoData) {
		t.Errorf("LoadAs() error = %v, want ErrNoData", err)
	}
}

func TestSource_YAMLComments(t *testing.T) {
	codectest.RegisterFixtures(t)
	ctx := context.Background()
	src, storage := codectest.NewMemorySource(yaml.New(),
		sconfig.WithSerializerSet(codectest.TestSerializerSet(t)),
		sconfig.WithComments(true),
	)

	if err := src.Save(ctx, codectest.SampleServer()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	out := storage.Bytes()

	for _, want := range []string{"# Server settings", "# Display name of the server", "# Connection string"} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if bytes.Contains(out, []byte("s3cr3t")) {
		t.Errorf("token written in clear:\n%s", out)
	}
	if bytes.Contains(out, []byte("session")) {
		t.Errorf("transient field written:\n%s", out)
	}
	if i, j := bytes.Index(out, []byte("id:")), bytes.Index(out, []byte("token:")); i < 0 || j < 0 || i > j {
		t.Errorf("fields out of declared order:\n%s", out)
	}
}

func TestSource_WrongKey(t *testing.T) {
	codectest.RegisterFixtures(t)
	ctx := context.Background()

	src, storage := codectest.NewMemorySource(json.New(), sconfig.WithSerializerSet(codectest.TestSerializerSet(t)))
	if err := src.Save(ctx, codectest.SampleServer()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	other, err := sconfig.AESSerializer([]byte("another-32-byte-key-for-aes-256!"))
	if err != nil {
		t.Fatalf("AESSerializer() error = %v", err)
	}
	wrong := sconfig.NewSource(storage, json.New(),
		sconfig.WithSerializerSet(sconfig.NewSetBuilder().Named("vault", other).Build()))
	if _, err := sconfig.LoadAs[*codectest.Server](ctx, wrong); !errors.Is(err, sconfig.ErrDecryptionFailed) {
		t.Errorf("LoadAs() error = %v, want ErrDecryptionFailed", err)
	}
}

func TestProperties_AfterLoad(t *testing.T) {
	codectest.RegisterFixtures(t)
	ctx := context.Background()
	src, _ := codectest.NewMemorySource(msgpack.New(), sconfig.WithSerializerSet(codectest.TestSerializerSet(t)))
	if err := src.Save(ctx, codectest.SampleServer()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	srv, err := sconfig.LoadAs[*codectest.Server](ctx, src)
	if err != nil {
		t.Fatalf("LoadAs() error = %v", err)
	}

	if err := sconfig.AddProperty(srv, "admins", "carol"); err != nil {
		t.Fatalf("AddProperty() error = %v", err)
	}
	if err := sconfig.SetProperty(srv, "database.pool", "20"); err != nil {
		t.Fatalf("SetProperty() error = %v", err)
	}
	if err := sconfig.SetProperty(srv, "id", "other"); !errors.Is(err, sconfig.ErrChangeRejected) {
		t.Errorf("SetProperty(id) error = %v, want ErrChangeRejected", err)
	}

	if err := src.Save(ctx, srv); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	again, err := sconfig.LoadAs[*codectest.Server](ctx, src)
	if err != nil {
		t.Fatalf("LoadAs() error = %v", err)
	}
	if _, ok := again.Admins["carol"]; !ok || again.Database.Pool != 20 {
		t.Errorf("reloaded = %+v", again)
	}
}
