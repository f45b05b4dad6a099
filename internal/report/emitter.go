package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	formatTextStringConstant          = "text"
	formatJSONStringConstant          = "json"
	formatCSVStringConstant           = "csv"
	unsupportedFormatTemplateConstant = "unsupported report format %q"
	missingWriterMessageConstant      = "report output writer not configured"
	textReportSeparatorConstant       = "\n"
	textRouteTemplateConstant         = "Route: %s\n"
	textIdentifierTemplateConstant    = "Report: %s\n"
	textStatusTemplateConstant        = "Status: %s\n"
	textCategoriesHeaderConstant      = "Categories:\n"
	textCategoryTemplateConstant      = "  %-*s  %s  %d/%d\n"
	textIssuesHeaderConstant          = "Issues:\n"
	textNoIssuesConstant              = "Issues: none\n"
	textIssueTemplateConstant         = "  %d. [%s] %s: %s (%s)"
	textIssueLocationTemplateConstant = " at %s"
	textCategoryPassConstant          = "PASS"
	textCategoryFailConstant          = "FAIL"
	jsonIndentConstant                = "  "
	csvHeaderRoute                    = "route"
	csvHeaderSeverity                 = "severity"
	csvHeaderRule                     = "rule"
	csvHeaderCategory                 = "category"
	csvHeaderFinding                  = "finding"
	csvHeaderDescription              = "description"
	csvHeaderLine                     = "line"
	csvHeaderColumn                   = "column"
)

// Format selects the report encoding.
type Format string

// Supported report formats.
const (
	FormatText Format = Format(formatTextStringConstant)
	FormatJSON Format = Format(formatJSONStringConstant)
	FormatCSV  Format = Format(formatCSVStringConstant)
)

// Formats lists the supported formats with the default first.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatCSV)}
}

// ParseFormat converts a case-insensitive format name; empty selects text.
func ParseFormat(rawValue string) (Format, error) {
	switch candidate := Format(strings.ToLower(strings.TrimSpace(rawValue))); candidate {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV:
		return candidate, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, rawValue)
	}
}

// Emitter writes reports to the output sink. One Emitter owns one output
// stream: the CSV header is written once and text reports are separated by a blank line.
type Emitter struct {
	writer           io.Writer
	format           Format
	csvHeaderWritten bool
	emittedReports   int
}

// NewEmitter constructs an Emitter for the provided sink and format.
func NewEmitter(writer io.Writer, format Format) (*Emitter, error) {
	if writer == nil {
		return nil, errors.New(missingWriterMessageConstant)
	}
	if _, formatError := ParseFormat(string(format)); formatError != nil {
		return nil, formatError
	}
	if len(format) == 0 {
		format = FormatText
	}
	return &Emitter{writer: writer, format: format}, nil
}

// Emit writes one report. In JSON format every call writes a separate document;
// use EmitAll to write several reports as one JSON array.
func (emitter *Emitter) Emit(auditReport AuditReport) error {
	var emitError error
	switch emitter.format {
	case FormatJSON:
		emitError = emitter.emitJSON(auditReport)
	case FormatCSV:
		emitError = emitter.emitCSV(auditReport)
	default:
		emitError = emitter.emitText(auditReport)
	}
	if emitError != nil {
		return emitError
	}
	emitter.emittedReports++
	return nil
}

// EmitAll writes the reports as one document: a JSON array, a CSV table with a
// single header row, or text reports separated by blank lines.
func (emitter *Emitter) EmitAll(auditReports []AuditReport) error {
	switch emitter.format {
	case FormatJSON:
		if auditReports == nil {
			auditReports = []AuditReport{}
		}
		if encodeError := emitter.emitJSON(auditReports); encodeError != nil {
			return encodeError
		}
		emitter.emittedReports += len(auditReports)
		return nil
	case FormatCSV:
		if len(auditReports) == 0 {
			return emitter.emitCSVRecords(nil)
		}
	}

	for _, auditReport := range auditReports {
		if emitError := emitter.Emit(auditReport); emitError != nil {
			return emitError
		}
	}
	return nil
}

func (emitter *Emitter) emitText(auditReport AuditReport) error {
	var builder strings.Builder
	if emitter.emittedReports > 0 {
		builder.WriteString(textReportSeparatorConstant)
	}
	fmt.Fprintf(&builder, textRouteTemplateConstant, auditReport.Route)
	fmt.Fprintf(&builder, textIdentifierTemplateConstant, auditReport.ID)
	fmt.Fprintf(&builder, textStatusTemplateConstant, strings.ToUpper(string(auditReport.Status)))

	if len(auditReport.Categories) > 0 {
		nameWidth := 0
		for _, category := range auditReport.Categories {
			if len(category.Name) > nameWidth {
				nameWidth = len(category.Name)
			}
		}
		builder.WriteString(textCategoriesHeaderConstant)
		for _, category := range auditReport.Categories {
			verdict := textCategoryPassConstant
			if !category.AllPassed() {
				verdict = textCategoryFailConstant
			}
			fmt.Fprintf(&builder, textCategoryTemplateConstant, nameWidth, category.Name, verdict, category.Passed, category.Total)
		}
	}

	if len(auditReport.Issues) == 0 {
		builder.WriteString(textNoIssuesConstant)
	} else {
		builder.WriteString(textIssuesHeaderConstant)
		for index, issue := range auditReport.Issues {
			fmt.Fprintf(&builder, textIssueTemplateConstant, index+1, strings.ToUpper(string(issue.Severity)), issue.Rule, issue.Description, issue.Finding)
			if issue.Location != nil {
				fmt.Fprintf(&builder, textIssueLocationTemplateConstant, issue.Location.String())
			}
			builder.WriteString("\n")
		}
	}

	_, writeError := io.WriteString(emitter.writer, builder.String())
	return writeError
}

func (emitter *Emitter) emitJSON(document any) error {
	encoder := json.NewEncoder(emitter.writer)
	encoder.SetIndent("", jsonIndentConstant)
	return encoder.Encode(document)
}

func (emitter *Emitter) emitCSV(auditReport AuditReport) error {
	records := make([][]string, 0, len(auditReport.Issues))
	for _, issue := range auditReport.Issues {
		lineValue, columnValue := "", ""
		if issue.Location != nil {
			lineValue = strconv.Itoa(issue.Location.Line)
			columnValue = strconv.Itoa(issue.Location.Column)
		}
		records = append(records, []string{
			auditReport.Route,
			string(issue.Severity),
			issue.Rule,
			issue.Category,
			string(issue.Finding),
			issue.Description,
			lineValue,
			columnValue,
		})
	}
	return emitter.emitCSVRecords(records)
}

func (emitter *Emitter) emitCSVRecords(records [][]string) error {
	csvWriter := csv.NewWriter(emitter.writer)
	if !emitter.csvHeaderWritten {
		header := []string{
			csvHeaderRoute,
			csvHeaderSeverity,
			csvHeaderRule,
			csvHeaderCategory,
			csvHeaderFinding,
			csvHeaderDescription,
			csvHeaderLine,
			csvHeaderColumn,
		}
		if writeError := csvWriter.Write(header); writeError != nil {
			return writeError
		}
	}
	for _, record := range records {
		if writeError := csvWriter.Write(record); writeError != nil {
			return writeError
		}
	}

	csvWriter.Flush()
	if flushError := csvWriter.Error(); flushError != nil {
		return flushError
	}
	emitter.csvHeaderWritten = true
	return nil
}
