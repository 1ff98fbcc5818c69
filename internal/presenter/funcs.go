// SPDX-FileCopyrightText: The DrobSaudia Authors
//
// SPDX-License-Identifier: MIT

package presenter

import (
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/vorlif/humanize"
)

func (p *Presenter) templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":    timeFormat,
		"localizedTime": p.localizedTime,
		"floatFormat":   floatFormat,
		"hum":           p.hum,
		"loc":           p.loc,
		"pad":           EmojiWithSpace,
		"lc":            strings.ToLower,
		"uc":            strings.ToUpper,
	}
}

// loc translates a message through the active locale, falling back to the
// untranslated string.
func (p *Presenter) loc(val string) string {
	return p.localizer.Get(val)
}

func (p *Presenter) localizedTime(val time.Time) string {
	return p.humanizer.FormatTime(val, humanize.TimeFormat)
}

// hum renders a float as a locale-aware integer string, used for distances
// and temperatures in the status line.
func (p *Presenter) hum(val float64) string {
	return p.humanizer.Intcomma(int(math.Round(val)))
}

func timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

func floatFormat(val float64, precision int) string {
	pow := math.Pow(10, float64(precision))
	return fmt.Sprintf("%.*f", precision, math.Trunc(val*pow)/pow)
}

// EmojiWithSpace pads an emoji with enough trailing space for monospace bar
// fonts that render wide glyphs.
func EmojiWithSpace(emoji string) string {
	if emoji == "" {
		return ""
	}
	width := runewidth.StringWidth(emoji)
	return fmt.Sprintf("%s%s", emoji, strings.Repeat(" ", width+1))
}
