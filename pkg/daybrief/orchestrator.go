package daybrief

import (
	"context"
	"errors"
	"sync"
	"time"
)

// primaryPassHour is the local hour of the daily primary generation pass.
// Checkpoint passes later in the evening regenerate only when no record for
// the day was produced at or after this hour.
const primaryPassHour = 23

const collectTimeout = 45 * time.Second

// Status reports the orchestrator's in-memory generation state.
func (c *Core) Status() GenerationStatus {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return GenerationStatus{
		IsGenerating:       c.isGenerating,
		LastGenerationDate: c.lastGenerationDate,
	}
}

// RunScheduledPrimary executes the daily primary pass. It always generates,
// overwriting any record already stored for today.
func (c *Core) RunScheduledPrimary(ctx context.Context) error {
	return c.runGeneration(ctx, true)
}

// RunScheduledCheckpoint executes one of the evening checkpoint passes. It
// generates only when today's record is missing or predates the primary pass,
// so a checkpoint never clobbers a digest the primary pass already wrote.
func (c *Core) RunScheduledCheckpoint(ctx context.Context) error {
	if c.hasFreshRecordForToday() {
		c.logger.Info("checkpoint skipped, digest already current", "date", c.todayISO())
		return nil
	}
	err := c.runGeneration(ctx, true)
	if errors.Is(err, ErrGenerationInFlight) {
		c.logger.Info("checkpoint skipped, generation in progress")
		return nil
	}
	return err
}

// TriggerManual runs a user-initiated generation attempt. Limited to once per
// calendar day (bypassed in dev mode) and bounded by the manual timeout.
func (c *Core) TriggerManual(ctx context.Context) error {
	today := c.todayISO()
	if !c.devMode {
		used, err := c.manualRefreshUsed(today)
		if err != nil {
			return err
		}
		if used {
			return WrapError(ErrCodeQuota, "manual refresh quota for "+today, ErrQuotaExceeded)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, c.manualTimeout)
	defer cancel()

	err := c.runGeneration(runCtx, false)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return WrapError(ErrCodeTimeout, "manual generation exceeded its time limit", ErrGenerationTimeout)
		}
		return err
	}

	if !c.devMode {
		if err := c.markManualRefresh(today); err != nil {
			// The digest was generated and saved; a failed marker write only
			// risks allowing one extra refresh today.
			c.logger.Warn("mark manual refresh failed", "date", today, "err", err)
		}
	}
	return nil
}

// ForceGenerate runs an out-of-schedule automated pass, used by the admin
// endpoint. Same semantics as the primary pass.
func (c *Core) ForceGenerate(ctx context.Context) error {
	return c.runGeneration(ctx, true)
}

// runGeneration is the shared pipeline: acquire the single-flight guard,
// collect upstream data, build the prompt, complete, parse, save.
func (c *Core) runGeneration(ctx context.Context, automated bool) error {
	if !c.beginGeneration() {
		return WrapError(ErrCodeInternal, "generation attempt rejected", ErrGenerationInFlight)
	}
	defer c.endGeneration()

	now := c.now().In(exchangeLocation)
	date := now.Format("2006-01-02")
	c.logger.Info("generation started", "date", date, "automated", automated)

	bundle := c.collectBundle(ctx)
	if !bundle.Sufficient() {
		c.logger.Warn("generation skipped, no news and no market data", "date", date)
		return WrapError(ErrCodeInternal, "nothing to summarize", ErrInsufficientData)
	}

	marketOpen := MarketOpenAt(now)
	prompt := BuildPrompt(bundle, isWeekendAt(now), !marketOpen, c.promptLimits)

	var text string
	var err error
	if automated {
		text, err = c.llm.CompleteAutomated(ctx, prompt, summarySystemInstruction, c.models)
	} else {
		text, err = c.llm.CompleteInteractive(ctx, prompt, summarySystemInstruction, c.models)
	}
	if err != nil {
		c.logger.Error("generation completion failed", "date", date, "automated", automated, "err", err)
		return err
	}

	sections := ParseSections(text)
	record := SummaryRecord{
		Date:           date,
		Language:       c.language,
		Country:        c.country,
		News:           sections.News,
		Trends:         sections.Trends,
		MarketOverview: sections.MarketOverview,
		ForwardLooking: sections.ForwardLooking,
		GeneratedAt:    now.Format(time.RFC3339),
		MarketWasOpen:  marketOpen,
		Automated:      automated,
	}
	if !record.HasContent() {
		// Degenerate replies are archived anyway so the day is marked done.
		c.logger.Warn("model reply matched no section headers", "date", date)
	}
	if err := c.store.Save(record); err != nil {
		return err
	}

	c.markGenerated(date)
	c.logger.Info("generation finished", "date", date, "automated", automated)
	return nil
}

// collectBundle fans out to the three upstream sources concurrently. Each
// source degrades to absent on failure; none can abort the attempt.
func (c *Core) collectBundle(ctx context.Context) CollectedBundle {
	collectCtx, cancel := context.WithTimeout(ctx, collectTimeout)
	defer cancel()

	var bundle CollectedBundle
	var wg sync.WaitGroup

	if c.news != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle.News = c.news.Collect(collectCtx)
		}()
	}
	if c.trends != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle.Trends = c.trends.Collect(collectCtx)
		}()
	}
	if c.finance != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			symbols, err := c.watchSymbolList()
			if err != nil {
				c.logger.Warn("watchlist unavailable", "err", err)
				return
			}
			bundle.Finance = c.finance.Collect(collectCtx, symbols)
		}()
	}
	wg.Wait()
	return bundle
}

// hasFreshRecordForToday reports whether today's record for the configured
// region exists and was generated at or after today's primary pass time. The
// comparison uses the full timestamp, so yesterday's late record never
// satisfies today's checkpoint.
func (c *Core) hasFreshRecordForToday() bool {
	now := c.now().In(exchangeLocation)
	date := now.Format("2006-01-02")

	record, err := c.store.Load(date, c.language, c.country)
	if err != nil {
		return false
	}
	generatedAt, err := time.Parse(time.RFC3339, record.GeneratedAt)
	if err != nil {
		return false
	}
	threshold := time.Date(now.Year(), now.Month(), now.Day(), primaryPassHour, 0, 0, 0, exchangeLocation)
	return !generatedAt.Before(threshold)
}

func (c *Core) beginGeneration() bool {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	if c.isGenerating {
		return false
	}
	c.isGenerating = true
	return true
}

func (c *Core) endGeneration() {
	c.genMu.Lock()
	c.isGenerating = false
	c.genMu.Unlock()
}

func (c *Core) markGenerated(date string) {
	c.genMu.Lock()
	c.lastGenerationDate = date
	c.genMu.Unlock()
}

func (c *Core) todayISO() string {
	return c.now().In(exchangeLocation).Format("2006-01-02")
}
