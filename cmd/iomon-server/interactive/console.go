// Package interactive provides the interactive command-line console
// for iomon-server.
package interactive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/iomon-project/iomon-go/pkg/model"
	"github.com/iomon-project/iomon-go/pkg/monitor"
)

// ItemSpace is the view of the address space the console operates on.
// This interface keeps the console independent of the main package's
// space implementation.
type ItemSpace interface {
	// NodeIDs returns all node identifiers, sorted.
	NodeIDs() []string

	// Variable returns a node by ID.
	Variable(nodeID string) (*model.Variable, bool)

	// CreateItem commits a new monitored item on nodeID.
	CreateItem(nodeID string, interval time.Duration, queue uint32, enabled bool) (*monitor.Item, error)

	// DeleteItem removes an item and shuts its wrapper down.
	DeleteItem(id monitor.ItemID) error

	// ModifyItemRate changes an item's requested sampling interval.
	ModifyItemRate(id monitor.ItemID, interval time.Duration) error

	// SetMonitoring toggles an item's enabled flag.
	SetMonitoring(id monitor.ItemID, enabled bool) error

	// Items returns all items sorted by ID.
	Items() []*monitor.Item
}

// Console handles interactive mode for iomon-server.
type Console struct {
	space  ItemSpace
	engine *monitor.Engine
	logger *slog.Logger
	rl     *readline.Instance
}

// New creates a new interactive console.
func New(space ItemSpace, engine *monitor.Engine, logger *slog.Logger) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "iomon> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		space:  space,
		engine: engine,
		logger: logger,
		rl:     rl,
	}, nil
}

// Stdout returns a writer that coordinates with the readline input.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "nodes", "n":
			c.cmdNodes()

		case "items", "i":
			c.cmdItems()

		case "read", "r":
			c.cmdRead(args)

		case "create", "c":
			c.cmdCreate(args)

		case "delete", "del":
			c.cmdDelete(args)

		case "rate":
			c.cmdRate(args)

		case "enable":
			c.cmdMode(args, true)

		case "disable":
			c.cmdMode(args, false)

		case "write", "w":
			c.cmdWrite(args)

		case "stats", "s":
			c.cmdStats()

		case "exit", "quit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.rl.Stdout(), `Commands:
  nodes                       List address-space nodes
  items                       List monitored items with current values
  read <node>                 Read a node's value directly
  create <node> <interval-ms> Create a monitored item
  delete <item-id>            Delete a monitored item
  rate <item-id> <interval-ms> Change an item's sampling interval
  enable <item-id>            Enable monitoring on an item
  disable <item-id>           Disable monitoring on an item
  write <node> <value>        Write a value to a writable node
  stats                       Show engine and scheduler statistics
  exit                        Shut the server down
`)
}

func (c *Console) cmdNodes() {
	w := c.rl.Stdout()
	for _, nodeID := range c.space.NodeIDs() {
		v, ok := c.space.Variable(nodeID)
		if !ok {
			continue
		}
		meta := v.Metadata()
		fmt.Fprintf(w, "  %-28s %-10s %-6s %s\n",
			nodeID, meta.Type, meta.Access, meta.DisplayName)
	}
}

func (c *Console) cmdItems() {
	w := c.rl.Stdout()
	items := c.space.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "No items")
		return
	}

	fmt.Fprintf(w, "  %-4s %-28s %-10s %-8s %-8s %s\n",
		"ID", "NODE", "INTERVAL", "ENABLED", "STATUS", "VALUE")
	for _, item := range items {
		dv := item.Value()
		interval := "push"
		if item.Interval() > 0 {
			interval = item.Interval().String()
		}
		fmt.Fprintf(w, "  %-4d %-28s %-10s %-8t %-8s %v\n",
			item.ID(), item.NodeID(), interval,
			item.SamplingEnabled(), dv.Status, dv.Value)
	}
}

func (c *Console) cmdRead(args []string) {
	w := c.rl.Stdout()
	if len(args) != 1 {
		fmt.Fprintln(w, "Usage: read <node>")
		return
	}

	v, ok := c.space.Variable(args[0])
	if !ok {
		fmt.Fprintf(w, "Unknown node: %s\n", args[0])
		return
	}

	dv, err := v.ReadValue(context.Background(), model.ReadRequest{Timestamps: model.TimestampsBoth})
	if err != nil {
		fmt.Fprintf(w, "Read failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "  value:  %v\n  status: %s\n  source: %s\n",
		dv.Value, dv.Status, dv.SourceTimestamp.Format(time.RFC3339Nano))
}

func (c *Console) cmdCreate(args []string) {
	w := c.rl.Stdout()
	if len(args) != 2 {
		fmt.Fprintln(w, "Usage: create <node> <interval-ms>")
		return
	}

	ms, err := strconv.Atoi(args[1])
	if err != nil || ms < 0 {
		fmt.Fprintf(w, "Invalid interval: %s\n", args[1])
		return
	}

	item, err := c.space.CreateItem(args[0], time.Duration(ms)*time.Millisecond, 10, true)
	if err != nil {
		fmt.Fprintf(w, "Create failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Created item %d on %s (interval %s)\n",
		item.ID(), item.NodeID(), item.Interval())
}

func (c *Console) cmdDelete(args []string) {
	w := c.rl.Stdout()
	id, ok := c.parseItemID(args, "delete <item-id>")
	if !ok {
		return
	}
	if err := c.space.DeleteItem(id); err != nil {
		fmt.Fprintf(w, "Delete failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Deleted item %d\n", id)
}

func (c *Console) cmdRate(args []string) {
	w := c.rl.Stdout()
	if len(args) != 2 {
		fmt.Fprintln(w, "Usage: rate <item-id> <interval-ms>")
		return
	}
	id, ok := c.parseItemID(args[:1], "")
	if !ok {
		return
	}
	ms, err := strconv.Atoi(args[1])
	if err != nil || ms <= 0 {
		fmt.Fprintf(w, "Invalid interval: %s\n", args[1])
		return
	}
	if err := c.space.ModifyItemRate(id, time.Duration(ms)*time.Millisecond); err != nil {
		fmt.Fprintf(w, "Rate change failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Item %d interval set to %dms\n", id, ms)
}

func (c *Console) cmdMode(args []string, enabled bool) {
	w := c.rl.Stdout()
	usage := "enable <item-id>"
	if !enabled {
		usage = "disable <item-id>"
	}
	id, ok := c.parseItemID(args, usage)
	if !ok {
		return
	}
	if err := c.space.SetMonitoring(id, enabled); err != nil {
		fmt.Fprintf(w, "Mode change failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Item %d monitoring enabled=%t\n", id, enabled)
}

func (c *Console) cmdWrite(args []string) {
	w := c.rl.Stdout()
	if len(args) != 2 {
		fmt.Fprintln(w, "Usage: write <node> <value>")
		return
	}

	v, ok := c.space.Variable(args[0])
	if !ok {
		fmt.Fprintf(w, "Unknown node: %s\n", args[0])
		return
	}

	value := parseValue(args[1], v.Metadata().Type)
	if err := v.SetValue(value); err != nil {
		fmt.Fprintf(w, "Write failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Wrote %v to %s\n", value, args[0])
}

func (c *Console) cmdStats() {
	w := c.rl.Stdout()
	sampled, pushed := c.engine.ItemCount()
	st := c.engine.Scheduler().Stats()

	fmt.Fprintf(w, "  engine:        %s\n", c.engine.ID())
	fmt.Fprintf(w, "  sampled items: %d\n", sampled)
	fmt.Fprintf(w, "  push items:    %d\n", pushed)
	fmt.Fprintf(w, "  tick buckets:  %d\n", st.Buckets)
	fmt.Fprintf(w, "  registrations: %d\n", st.Registrations)
	fmt.Fprintf(w, "  ticks fired:   %d\n", st.Fired)
	fmt.Fprintf(w, "  ticks dropped: %d\n", st.Dropped)
}

func (c *Console) parseItemID(args []string, usage string) (monitor.ItemID, bool) {
	w := c.rl.Stdout()
	if len(args) != 1 {
		if usage != "" {
			fmt.Fprintf(w, "Usage: %s\n", usage)
		}
		return 0, false
	}
	n, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(w, "Invalid item ID: %s\n", args[0])
		return 0, false
	}
	return monitor.ItemID(n), true
}

// parseValue converts a console argument to the node's value type,
// falling back to the raw string.
func parseValue(s string, typ model.DataType) any {
	switch typ {
	case model.DataTypeBool:
		b, err := strconv.ParseBool(s)
		if err == nil {
			return b
		}
	case model.DataTypeFloat32, model.DataTypeFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return f
		}
	case model.DataTypeInt8, model.DataTypeInt16, model.DataTypeInt32, model.DataTypeInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return n
		}
	case model.DataTypeUint8, model.DataTypeUint16, model.DataTypeUint32, model.DataTypeUint64:
		n, err := strconv.ParseUint(s, 10, 64)
		if err == nil {
			return n
		}
	}
	return s
}
