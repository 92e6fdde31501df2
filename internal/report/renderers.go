package report

import (
	"fmt"
	"math"

	"github.com/fmuoria/intern-evaluation/internal/layout"
)

// Section sizes in millimetres and font sizes in points
const (
	headerHeight    = 26.0
	sectionGap      = 3.0
	titleBarHeight  = 7.0
	infoRowHeight   = 7.0
	tableHeadHeight = 7.0
	tableRowHeight  = 7.0
	summaryHeight   = 32.0
	signatureHeight = 24.0

	// signatures start on a new page when the cursor is below this
	// distance from the bottom threshold
	signatureSafeZone = 30.0

	commentFontSize    = 10.0
	continuationHeight = 6.0
	minCommentLines    = 3

	bodyFontSize  = 10.0
	smallFontSize = 8.0
)

// sectionTitle draws a filled title bar, moved to a new page together
// with the first keepWith millimetres of the section that follows it
func sectionTitle(c *layout.Context, name, title string, keepWith float64) error {
	if !c.Fits(titleBarHeight + keepWith) {
		c.BreakPage()
	}
	y, err := c.Place(name, titleBarHeight)
	if err != nil {
		return err
	}
	g := c.Geometry()

	c.SetFillColor(layout.Navy)
	c.Rect(g.Left(), y, g.ContentWidth(), titleBarHeight-1, "F")
	c.SetFont(layout.Bold, 11)
	c.SetTextColor(layout.White)
	c.Text(g.Left()+3, y+4.8, title)
	return nil
}

// renderHeader draws the title, subtitle, decorative rule and the
// document id line
func renderHeader(c *layout.Context, d HeaderData) (layout.Cursor, error) {
	y, err := c.Place("header", headerHeight)
	if err != nil {
		return c.Cursor(), err
	}
	g := c.Geometry()
	mid := g.PageWidth / 2

	c.SetFont(layout.Bold, 18)
	c.SetTextColor(layout.Navy)
	c.TextCentered(mid, y+7, d.Title, layout.Bold, 18)

	c.SetFont(layout.Italic, 11)
	c.SetTextColor(layout.Muted)
	c.TextCentered(mid, y+13, d.Subtitle, layout.Italic, 11)

	c.SetDrawColor(layout.Gold)
	c.SetLineWidth(0.8)
	c.Line(g.Left()+20, y+16.5, g.Right()-20, y+16.5)
	c.SetLineWidth(0.3)
	c.Line(g.Left()+35, y+18, g.Right()-35, y+18)

	c.SetFont(layout.Regular, smallFontSize)
	c.SetTextColor(layout.Muted)
	c.Text(g.Left(), y+23, "Document ID: "+d.DocumentID)
	generated := "Generated: " + d.GeneratedAt.UTC().Format(dateLayout)
	c.TextRight(g.Right(), y+23, generated, layout.Regular, smallFontSize)

	c.Skip(sectionGap)
	return c.Cursor(), nil
}

// renderInfoTable draws the fixed-height key/value rows with alternating
// shading
func renderInfoTable(c *layout.Context, rows []InfoRow) (layout.Cursor, error) {
	if err := sectionTitle(c, "info-title", "INTERN INFORMATION", infoRowHeight); err != nil {
		return c.Cursor(), err
	}
	g := c.Geometry()
	keyX := g.Left() + 3
	valueX := g.Left() + 55
	valueW := g.Right() - valueX - 3

	for i, row := range rows {
		y, err := c.Place("info-row:"+row.Key, infoRowHeight)
		if err != nil {
			return c.Cursor(), err
		}
		if i%2 == 0 {
			c.SetFillColor(layout.RowShade)
			c.Rect(g.Left(), y, g.ContentWidth(), infoRowHeight, "F")
		}
		c.SetFont(layout.Bold, bodyFontSize)
		c.SetTextColor(layout.Ink)
		c.Text(keyX, y+5, row.Key)
		c.SetFont(layout.Regular, bodyFontSize)
		c.Text(valueX, y+5, fitText(row.Value, layout.Regular, bodyFontSize, valueW))
	}

	c.Skip(sectionGap)
	return c.Cursor(), nil
}

// criteria table column positions, relative to the left content edge
const (
	colLabel  = 3.0
	colScore  = 105.0
	colRating = 128.0
)

func drawCriteriaHead(c *layout.Context) error {
	y, err := c.Place("criteria-head", tableHeadHeight)
	if err != nil {
		return err
	}
	g := c.Geometry()
	c.SetFillColor(layout.HeaderRow)
	c.Rect(g.Left(), y, g.ContentWidth(), tableHeadHeight, "F")
	c.SetFont(layout.Bold, bodyFontSize)
	c.SetTextColor(layout.White)
	c.Text(g.Left()+colLabel, y+5, "Criterion")
	c.Text(g.Left()+colScore, y+5, "Score")
	c.Text(g.Left()+colRating, y+5, "Rating")
	return nil
}

// renderCriteria draws one atomic row per criterion, repeating the column
// head after a page break, then the comments block. The second result
// reports whether the comments had to be continued across pages.
func renderCriteria(c *layout.Context, d CriteriaData) (layout.Cursor, bool, error) {
	if err := sectionTitle(c, "criteria-title", "PERFORMANCE CRITERIA", tableHeadHeight+tableRowHeight); err != nil {
		return c.Cursor(), false, err
	}
	if err := drawCriteriaHead(c); err != nil {
		return c.Cursor(), false, err
	}
	g := c.Geometry()

	for i, row := range d.Rows {
		if !c.Fits(tableRowHeight) {
			c.BreakPage()
			if err := drawCriteriaHead(c); err != nil {
				return c.Cursor(), false, err
			}
		}
		y, err := c.Place("criterion:"+row.Label, tableRowHeight)
		if err != nil {
			return c.Cursor(), false, err
		}

		if i%2 == 1 {
			c.SetFillColor(layout.RowShade)
			c.Rect(g.Left(), y, g.ContentWidth(), tableRowHeight, "F")
		}
		c.SetDrawColor(layout.RowShade)
		c.SetLineWidth(0.2)
		c.Line(g.Left(), y+tableRowHeight, g.Right(), y+tableRowHeight)

		c.SetFont(layout.Regular, bodyFontSize)
		c.SetTextColor(layout.Ink)
		c.Text(g.Left()+colLabel, y+5, row.Label)
		c.SetFont(layout.Bold, bodyFontSize)
		c.Text(g.Left()+colScore, y+5, scoreText(row.Mark))
		c.SetFont(layout.Regular, bodyFontSize)
		c.SetTextColor(layout.Navy)
		c.Text(g.Left()+colRating, y+5, row.Rating)
	}
	c.Skip(sectionGap)

	continued := false
	if d.Comments != "" {
		var err error
		continued, err = renderComments(c, d.Comments)
		if err != nil {
			return c.Cursor(), continued, err
		}
	}
	return c.Cursor(), continued, nil
}

// renderComments draws the free-text comments. Its height comes from
// MeasureTextBlock. A block taller than one page is split into page-sized
// chunks joined by continuation markers; it reports whether that happened.
func renderComments(c *layout.Context, text string) (bool, error) {
	g := c.Geometry()
	textW := g.ContentWidth() - 8
	m := layout.MeasureTextBlock(text, commentFontSize, textW)
	if m.LineCount == 0 {
		return false, nil
	}

	if titleBarHeight+m.Height <= g.UsableHeight() {
		y, err := c.Place("comments", titleBarHeight+m.Height)
		if err != nil {
			return false, err
		}
		drawComments(c, y, "ADDITIONAL COMMENTS", m.Lines, m, false)
		c.Skip(sectionGap)
		return false, nil
	}

	lines := m.Lines
	title := "ADDITIONAL COMMENTS"
	part := 0
	for len(lines) > 0 {
		room := c.Remaining() - titleBarHeight - layout.TextBlockPadding - continuationHeight
		n := int(math.Floor(room / m.LineHeight))
		if n < minCommentLines && !c.AtTop() {
			c.BreakPage()
			continue
		}
		n = max(1, min(n, len(lines)))
		more := n < len(lines)

		h := titleBarHeight + float64(n)*m.LineHeight + layout.TextBlockPadding
		if more {
			h += continuationHeight
		}
		part++
		y, err := c.Place(fmt.Sprintf("comments:%d", part), h)
		if err != nil {
			return true, err
		}
		drawComments(c, y, title, lines[:n], m, more)

		lines = lines[n:]
		title = "ADDITIONAL COMMENTS (CONTINUED)"
	}
	c.Skip(sectionGap)
	return true, nil
}

func drawComments(c *layout.Context, y float64, title string, lines []string, m layout.Measure, more bool) {
	g := c.Geometry()

	c.SetFillColor(layout.Navy)
	c.Rect(g.Left(), y, g.ContentWidth(), titleBarHeight-1, "F")
	c.SetFont(layout.Bold, 11)
	c.SetTextColor(layout.White)
	c.Text(g.Left()+3, y+4.8, title)

	boxTop := y + titleBarHeight
	boxH := float64(len(lines))*m.LineHeight + layout.TextBlockPadding
	c.SetDrawColor(layout.Navy)
	c.SetLineWidth(0.3)
	c.Rect(g.Left(), boxTop, g.ContentWidth(), boxH, "D")

	c.SetFont(layout.Regular, commentFontSize)
	c.SetTextColor(layout.Ink)
	baseline := boxTop + layout.TextBlockPadding/2 + m.LineHeight*0.75
	for i, line := range lines {
		c.Text(g.Left()+4, baseline+float64(i)*m.LineHeight, line)
	}

	if more {
		c.SetFont(layout.Italic, smallFontSize)
		c.SetTextColor(layout.Muted)
		c.TextRight(g.Right(), boxTop+boxH+4.5, "(continued on next page)", layout.Italic, smallFontSize)
	}
}

// renderSummary draws the fixed-height overall assessment box in two
// columns
func renderSummary(c *layout.Context, d SummaryData) (layout.Cursor, error) {
	if err := sectionTitle(c, "summary-title", "OVERALL ASSESSMENT", summaryHeight); err != nil {
		return c.Cursor(), err
	}
	y, err := c.Place("summary", summaryHeight)
	if err != nil {
		return c.Cursor(), err
	}
	g := c.Geometry()
	colW := g.ContentWidth() / 2
	leftX := g.Left() + 5
	rightX := g.Left() + colW + 5

	c.SetFillColor(layout.RowShade)
	c.SetDrawColor(layout.Navy)
	c.SetLineWidth(0.5)
	c.Rect(g.Left(), y, g.ContentWidth(), summaryHeight-2, "FD")
	c.SetLineWidth(0.2)
	c.Line(g.Left()+colW, y+3, g.Left()+colW, y+summaryHeight-5)

	c.SetFont(layout.Regular, smallFontSize)
	c.SetTextColor(layout.Muted)
	c.Text(leftX, y+6, "Total Score")
	c.Text(leftX, y+19, "Grade")
	c.Text(rightX, y+6, "Performance")
	c.Text(rightX, y+19, "Recommendation")

	c.SetFont(layout.Bold, 16)
	c.SetTextColor(layout.Navy)
	c.Text(leftX, y+13, fmt.Sprintf("%d / %d", d.Total, d.Max))
	c.Text(leftX, y+26, string(d.Grade))

	c.SetFont(layout.Regular, bodyFontSize)
	c.SetTextColor(layout.Ink)
	c.Text(leftX+40, y+13, fmt.Sprintf("(%.1f%%)", d.Percentage))

	c.SetFont(layout.Bold, 12)
	c.SetTextColor(layout.Navy)
	c.Text(rightX, y+13, d.Label)

	c.SetFont(layout.Regular, 9)
	c.SetTextColor(layout.Ink)
	recW := colW - 10
	lines := layout.WrapText(d.Recommendation, layout.Regular, 9, recW)
	for i, line := range lines {
		if i == 2 {
			break
		}
		c.Text(rightX, y+24+float64(i)*layout.LineHeight(9), line)
	}

	c.Skip(sectionGap)
	return c.Cursor(), nil
}

// renderSignatures draws two signature lines side by side, starting a new
// page first when the cursor is too close to the bottom
func renderSignatures(c *layout.Context, d SignatureData) (layout.Cursor, error) {
	g := c.Geometry()
	if c.Y() > g.Bottom()-signatureSafeZone {
		c.BreakPage()
	}
	y, err := c.Place("signatures", signatureHeight)
	if err != nil {
		return c.Cursor(), err
	}

	const lineW = 65.0
	lineY := y + 12
	leftX := g.Left()
	rightX := g.Right() - lineW

	c.SetDrawColor(layout.Ink)
	c.SetLineWidth(0.4)
	c.Line(leftX, lineY, leftX+lineW, lineY)
	c.Line(rightX, lineY, rightX+lineW, lineY)

	c.SetFont(layout.Bold, 9)
	c.SetTextColor(layout.Ink)
	c.Text(leftX, lineY+5, d.LeftLabel)
	c.Text(rightX, lineY+5, d.RightLabel)

	c.SetFont(layout.Regular, smallFontSize)
	c.SetTextColor(layout.Muted)
	if d.LeftName != "" {
		c.Text(leftX, lineY+9, fitText(d.LeftName, layout.Regular, smallFontSize, lineW))
	}
	if d.RightName != "" {
		c.Text(rightX, lineY+9, fitText(d.RightName, layout.Regular, smallFontSize, lineW))
	}
	return c.Cursor(), nil
}

// renderFooters draws the attribution and page number on every page at a
// fixed offset from the bottom, independent of the cursor
func renderFooters(c *layout.Context, d FooterData) {
	g := c.Geometry()
	total := c.PageCount()
	for n := 1; n <= total; n++ {
		c.OnPage(n, func() {
			y := g.FooterY()
			c.SetDrawColor(layout.Gold)
			c.SetLineWidth(0.3)
			c.Line(g.Left(), y-4, g.Right(), y-4)

			c.SetFont(layout.Italic, smallFontSize)
			c.SetTextColor(layout.Muted)
			c.Text(g.Left(), y, fitText(d.Attribution, layout.Italic, smallFontSize, g.ContentWidth()-30))
			c.TextRight(g.Right(), y, fmt.Sprintf("Page %d of %d", n, total), layout.Italic, smallFontSize)
		})
	}
}
