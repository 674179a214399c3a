package sconfig

import (
	"fmt"
	"time"
)

type child struct {
	Flag bool
}

type parent struct {
	Child child
}

type unaliased struct {
	Value int
}

type selfContained struct {
	Name string
	Next *selfContained
}

type loopA struct {
	B *loopB
}

type loopB struct {
	A *loopA
}

type base struct {
	ID   string `config:"id,immutable"`
	Name string
}

type derived struct {
	base
	Name  string `comment:"Shadows the embedded name"`
	Extra int
}

type ignoring struct {
	base
	Own string
}

type tagged struct {
	HTTPPort int
	Secret   string `config:"-"`
	Cache    string `config:"cache,transient"`
	hidden   int
}

type color int

const (
	red color = iota
	green
	blue
)

func (c color) String() string {
	switch c {
	case red:
		return "red"
	case green:
		return "green"
	case blue:
		return "blue"
	}
	return fmt.Sprintf("color(%d)", int(c))
}

// difficulty is a faux enum: its values are package-level pointers.
type difficulty struct {
	name string
}

func (d *difficulty) Name() string { return d.name }

var (
	easy = &difficulty{name: "Easy"}
	hard = &difficulty{name: "Hard"}
)

type settings struct {
	ID      string `config:"id,immutable"`
	Name    string
	Port    int `validate:"test-port"`
	Ratio   float64
	Enabled bool
	Timeout time.Duration
	Color   color
	Level   *difficulty
	Tags    []string
	Flags   map[string]struct{}
	Limits  map[string]int
	Fixed   [2]int
	Raw     []byte
	When    time.Time
	Nested  *child
	Any     any
	Session string `config:"session,transient"`
}

type counter struct {
	n int
}

func (c *counter) Get() int  { return c.n }
func (c *counter) Set(n int) { c.n = n }

type withDependent struct {
	Level *Dependent[int]
}

type defaulted struct {
	Port int
	Host string
}

func (d *defaulted) ConfigDefaults() {
	d.Port = 8080
	d.Host = "localhost"
}

func init() {
	RegisterEnum(red, green, blue)
	RegisterEnum(easy, hard)

	RegisterValidator("test-port", ValidatorFunc(func(newValue, _ any) (any, error) {
		if p, ok := newValue.(int); ok && (p < 0 || p > 65535) {
			return nil, Reject("port %d out of range", p)
		}
		return newValue, nil
	}))

	Declare[ignoring](WithIgnoreEmbedded())

	mustRegister(Register[parent](WithAlias("Parent")))
	mustRegister(Register[child](WithAlias("Child")))
	mustRegister(Register[settings](WithAlias("Settings")))
	mustRegister(Register[defaulted](WithAlias("Defaulted")))
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

func sampleSettings() *settings {
	return &settings{
		ID:      "s-1",
		Name:    "lobby",
		Port:    25565,
		Ratio:   0.75,
		Enabled: true,
		Timeout: 90 * time.Second,
		Color:   green,
		Level:   hard,
		Tags:    []string{"a", "b"},
		Flags:   map[string]struct{}{"pvp": {}, "hardcore": {}},
		Limits:  map[string]int{"players": 20},
		Fixed:   [2]int{1, 2},
		Raw:     []byte("raw"),
		When:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Nested:  &child{Flag: true},
		Any:     "anything",
	}
}
