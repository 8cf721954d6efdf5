package templates

import "github.com/JonMunkholm/datagrid/internal/core"

// HTMXSrc is the script loaded by every page.
const HTMXSrc = "https://unpkg.com/htmx.org@2.0.4"

// styleTag is written into the page head unescaped.
const styleTag = `<style>
body{font-family:system-ui,sans-serif;margin:0;color:#18181b;background:#fafafa}
main{max-width:1280px;margin:0 auto;padding:1.5rem}
a{color:#2563eb}
.toolbar,.pagination,.floating-bar{display:flex;gap:.5rem;align-items:center;flex-wrap:wrap;margin:.5rem 0}
.export{display:inline-flex;gap:.25rem;align-items:center}
.grid-scroll{overflow:auto;border:1px solid #e4e4e7;border-radius:.375rem;background:#fff}
.grid-scroll.virtual{height:640px}
table.grid{border-collapse:separate;border-spacing:0;table-layout:fixed;font-size:.875rem}
table.grid caption{caption-side:bottom;text-align:left}
table.grid th,table.grid td{padding:.375rem .5rem;border-bottom:1px solid #f4f4f5;white-space:nowrap;overflow:hidden;text-overflow:ellipsis;background:#fff}
table.grid th{position:sticky;top:0;z-index:2;text-align:left;vertical-align:top}
table.grid .pinned{position:sticky;z-index:1}
table.grid th.pinned{z-index:3}
table.grid .last-left{box-shadow:-4px 0 4px -4px gray inset}
table.grid .first-right{box-shadow:4px 0 4px -4px gray inset}
table.grid tr.selected td{background:#eff6ff}
table.grid.loading tbody{opacity:.6}
.chip{border:1px solid #d4d4d8;border-radius:9999px;padding:.125rem .5rem;font-size:.75rem}
.column-toggle{display:flex;gap:.5rem;justify-content:space-between}
.menu{position:absolute;background:#fff;border:1px solid #e4e4e7;border-radius:.375rem;box-shadow:0 4px 12px #0002;padding:.25rem;z-index:10}
.menu button{display:block;width:100%;text-align:left;background:none;border:0;padding:.25rem .5rem;cursor:pointer}
dialog{border:1px solid #e4e4e7;border-radius:.5rem;max-width:32rem}
.alert{border:1px solid #fca5a5;background:#fef2f2;color:#991b1b;border-radius:.375rem;padding:.75rem;margin:.5rem 0}
.field{margin:.5rem 0}.field label{display:block;font-weight:600}.field .error{color:#b91c1c;font-size:.75rem}
.hint{color:#71717a;font-size:.75rem}
</style>`

// htmxConfig swaps error responses too, so alerts and form errors render.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"[45]..","swap":true,"error":true}]}`

// TableGroup is one listing section of the index page.
type TableGroup struct {
	Name   string
	Tables []core.TableInfo
}
