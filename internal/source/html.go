package source

import (
	"fmt"
	"os"
	"strings"

	"github.com/nconklindev/rentport/internal/normalize"
	"github.com/nconklindev/rentport/internal/types"

	"golang.org/x/net/html"
)

// readHTMLData flattens every <tr> of an exported workbook page into a row.
// Only direct <td>/<th> children count as cells so nested tables do not
// shift columns.
func readHTMLData(filePath string) (*types.FileData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	doc, err := html.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return &types.FileData{Rows: TableRows(doc)}, nil
}

// TableRows returns the rows of all tables under n in document order.
func TableRows(n *html.Node) []types.Row {
	var rows []types.Row
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, "tr") {
			rows = append(rows, rowCells(cur))
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	dfs(n)
	return rows
}

func rowCells(tr *html.Node) types.Row {
	var row types.Row
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		name := strings.ToLower(c.Data)
		if name != "td" && name != "th" {
			continue
		}
		var b strings.Builder
		collectText(&b, c)
		row = append(row, normalize.Collapse(b.String()))
	}
	return row
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "script", "style":
			return
		case "br", "p", "div":
			b.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}
