package dashboard

import (
	"context"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/pkg/errors"

	"github.com/zhukovaskychina/xmemsim/logger"
	"github.com/zhukovaskychina/xmemsim/server/dispatcher"
	"github.com/zhukovaskychina/xmemsim/server/dump"
	"github.com/zhukovaskychina/xmemsim/server/memory"
	"github.com/zhukovaskychina/xmemsim/server/simulator"
)

// Dashboard 终端仪表盘，只读取快照渲染，按键经Driver转为命令
type Dashboard struct {
	dispatcher *dispatcher.CommandDispatcher
	driver     *simulator.Driver
	dumpDir    string

	topBar    *widgets.Paragraph
	statsBar  *widgets.Paragraph
	frameMap  *widgets.Paragraph
	usage     *widgets.Gauge
	metrics   *widgets.Paragraph
	processes *widgets.List
	events    *widgets.List
	swap      *widgets.List
	footer    *widgets.Paragraph
	grid      *ui.Grid
}

func New(d *dispatcher.CommandDispatcher, driver *simulator.Driver, dumpDir string) *Dashboard {
	return &Dashboard{
		dispatcher: d,
		driver:     driver,
		dumpDir:    dumpDir,
	}
}

// HandleKey 处理一个按键，返回是否退出
func (db *Dashboard) HandleKey(key string) bool {
	switch key {
	case "q", "<C-c>":
		return true
	case "p":
		db.driver.TogglePause()
	case "a":
		db.driver.ToggleMode()
	case "n":
		_, _ = db.driver.CreateProcess()
	case "k":
		db.driver.Kill()
	case "1":
		_ = db.driver.SetPolicy(memory.PolicyFIFO)
	case "2":
		_ = db.driver.SetPolicy(memory.PolicyClock)
	case "3":
		_ = db.driver.SetPolicy(memory.PolicyLRU)
	case "d":
		db.dumpSnapshot()
	}
	return false
}

func (db *Dashboard) dumpSnapshot() {
	path, err := dump.WriteFile(db.dumpDir, db.dispatcher.Snapshot(), time.Now())
	if err != nil {
		logger.Errorf("dump snapshot: %v", err)
		db.dispatcher.RecordEvent("[ERROR] Dump failed: %v", err)
		return
	}
	db.dispatcher.RecordEvent("[DUMP] Snapshot written to %s", path)
}

// Run 接管终端直到按下q或ctx被取消
func (db *Dashboard) Run(ctx context.Context, refresh time.Duration) error {
	if err := ui.Init(); err != nil {
		return errors.Wrap(err, "init terminal ui")
	}
	defer ui.Close()

	db.build()
	db.resize(ui.TerminalDimensions())
	db.render()

	uiEvents := ui.PollEvents()
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-uiEvents:
			switch e.Type {
			case ui.ResizeEvent:
				payload := e.Payload.(ui.Resize)
				db.resize(payload.Width, payload.Height)
			case ui.KeyboardEvent:
				if db.HandleKey(e.ID) {
					return nil
				}
			}
			db.render()
		case <-ticker.C:
			db.render()
		}
	}
}

func (db *Dashboard) build() {
	db.topBar = widgets.NewParagraph()
	db.topBar.Border = false
	db.topBar.TextStyle = ui.NewStyle(ui.ColorWhite, ui.ColorBlue, ui.ModifierBold)

	db.statsBar = widgets.NewParagraph()
	db.statsBar.Title = " System Statistics "
	db.statsBar.BorderStyle = ui.NewStyle(ui.ColorCyan)

	db.frameMap = widgets.NewParagraph()
	db.frameMap.Title = " Physical Memory Map (RAM) "
	db.frameMap.BorderStyle = ui.NewStyle(ui.ColorGreen)

	db.usage = widgets.NewGauge()
	db.usage.Title = " RAM Usage "
	db.usage.BarColor = ui.ColorGreen

	db.metrics = widgets.NewParagraph()
	db.metrics.Title = " Performance Metrics "
	db.metrics.BorderStyle = ui.NewStyle(ui.ColorYellow)

	db.processes = widgets.NewList()
	db.processes.Title = " Active Processes "
	db.processes.TextStyle = ui.NewStyle(ui.ColorWhite)

	db.events = widgets.NewList()
	db.events.Title = " Event Log "
	db.events.TextStyle = ui.NewStyle(ui.ColorWhite)

	db.swap = widgets.NewList()
	db.swap.TextStyle = ui.NewStyle(ui.ColorMagenta)

	db.footer = widgets.NewParagraph()
	db.footer.Border = false
	db.footer.Text = footerText

	db.grid = ui.NewGrid()
	db.grid.Set(
		ui.NewRow(1.0/20, db.topBar),
		ui.NewRow(3.0/20,
			ui.NewCol(0.75, db.statsBar),
			ui.NewCol(0.25, db.usage),
		),
		ui.NewRow(10.0/20,
			ui.NewCol(0.7, db.frameMap),
			ui.NewCol(0.3,
				ui.NewRow(0.45, db.metrics),
				ui.NewRow(0.55, db.processes),
			),
		),
		ui.NewRow(5.0/20,
			ui.NewCol(0.65, db.events),
			ui.NewCol(0.35, db.swap),
		),
		ui.NewRow(1.0/20, db.footer),
	)
}

func (db *Dashboard) resize(width, height int) {
	db.grid.SetRect(0, 0, width, height)
}

func (db *Dashboard) render() {
	snap := db.dispatcher.Snapshot()
	paused, auto := db.driver.Paused(), db.driver.Auto()

	db.topBar.Text = TopBarText(snap, paused, auto)
	if paused {
		db.topBar.TextStyle = ui.NewStyle(ui.ColorBlack, ui.ColorYellow, ui.ModifierBold)
	} else {
		db.topBar.TextStyle = ui.NewStyle(ui.ColorWhite, ui.ColorBlue, ui.ModifierBold)
	}
	db.statsBar.Text = StatsText(snap, db.driver.MaxProcesses())
	db.frameMap.Text = FrameMapText(snap)
	db.usage.Percent = int(snap.Utilization)
	db.usage.Label = FormatPercent(snap.Utilization, 1)
	db.metrics.Text = MetricsText(snap)
	db.processes.Rows = ProcessRows(snap)
	db.events.Rows = snap.Events
	db.events.ScrollBottom()
	db.swap.Title = SwapTitle(snap)
	db.swap.Rows = SwapRows(snap)

	ui.Render(db.grid)
}
