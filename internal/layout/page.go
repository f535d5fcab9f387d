// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import "html/template"

// Page is the dashboard page template. The chart rendering itself is
// delegated to the Google Charts loader; the Go side only ships
// declarative figures as JSON, fetched per output whenever one of the
// output's declared inputs changes.
var Page = template.Must(template.New("page").Parse(pageHTML))

// PageData is the template payload.
type PageData struct {
	Title    string
	Session  string
	Controls interface{} // []Control
	Bindings interface{} // map[output][]input
}

const pageHTML = `
<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>{{.Title}}</title>
    <script type="text/javascript" src="https://www.gstatic.com/charts/loader.js"></script>
    <style>
body {
  font-family: sans-serif;
  color: #222;
  margin: 0;
}
#controls {
  padding: 8px 16px;
  background: #f5f5f5;
  border-bottom: 1px solid #ddd;
}
#controls label {
  margin-right: 16px;
  font-size: 13px;
}
#controls select[multiple] {
  vertical-align: top;
  min-width: 10em;
}
.chart {
  width: 49vw;
  height: 44vh;
  display: inline-block;
}
#load {
  padding: 8px 16px;
  color: #777;
  font-size: 13px;
}
    </style>
    <script type="text/javascript">
     var controls = {{.Controls}};
     var bindings = {{.Bindings}};
     var session = {{.Session}};
     var state = {};
     var seq = 0;

     google.charts.load('current', {packages: ['corechart', 'geochart']});
     google.charts.setOnLoadCallback(init);

     function init() {
         var box = document.getElementById('controls');
         controls.forEach(function(c) {
             state[c.id] = c.default || [];
             box.appendChild(buildControl(c));
         });
         Object.keys(bindings).forEach(refresh);
     }

     function buildControl(c) {
         var label = document.createElement('label');
         label.appendChild(document.createTextNode(c.label + ' '));
         if (c.kind == 'radio') {
             c.options.forEach(function(o) {
                 var r = document.createElement('input');
                 r.type = 'radio';
                 r.name = c.id;
                 r.value = o.value;
                 r.checked = state[c.id][0] == o.value;
                 r.onchange = function() { set(c.id, [o.value]); };
                 label.appendChild(r);
                 label.appendChild(document.createTextNode(o.label));
             });
         } else if (c.kind == 'slider') {
             var s = document.createElement('input');
             s.type = 'range';
             s.min = c.min;
             s.max = c.max;
             s.value = state[c.id][0];
             s.onchange = function() { set(c.id, [s.value]); };
             label.appendChild(s);
         } else if (c.kind == 'range') {
             ['0', '1'].forEach(function(i) {
                 var n = document.createElement('input');
                 n.type = 'number';
                 n.min = c.min;
                 n.max = c.max;
                 n.value = state[c.id][i];
                 n.onchange = function() {
                     var v = state[c.id].slice();
                     v[i] = n.value;
                     set(c.id, v);
                 };
                 label.appendChild(n);
             });
         } else {
             var sel = document.createElement('select');
             if (c.kind == 'multi')
                 sel.multiple = true;
             c.options.forEach(function(o) {
                 var opt = document.createElement('option');
                 opt.value = o.value;
                 opt.textContent = o.label;
                 opt.selected = state[c.id].indexOf(o.value) >= 0;
                 sel.appendChild(opt);
             });
             sel.onchange = function() {
                 var v = [];
                 for (var i = 0; i < sel.selectedOptions.length; i++)
                     v.push(sel.selectedOptions[i].value);
                 set(c.id, v);
             };
             label.appendChild(sel);
         }
         return label;
     }

     // set applies a control change and refreshes exactly the outputs
     // whose declared inputs include the changed control.
     function set(id, values) {
         state[id] = values;
         seq++;
         Object.keys(bindings).forEach(function(output) {
             if (bindings[output].indexOf(id) >= 0)
                 refresh(output);
         });
     }

     function refresh(output) {
         var q = new URLSearchParams();
         q.set('session', session);
         q.set('seq', seq);
         Object.keys(state).forEach(function(id) {
             state[id].forEach(function(v) { q.append(id, v); });
         });
         fetch('/api/figure/' + output + '?' + q.toString())
             .then(function(resp) { return resp.json(); })
             .then(function(fig) { draw(output, fig); });
     }

     function draw(output, fig) {
         var div = document.getElementById(output);
         if (output == 'load') {
             div.textContent = fig.text || '';
             return;
         }
         if (fig.kind == 'bar')
             drawBar(div, fig);
         else if (fig.kind == 'choropleth')
             drawGeo(div, fig);
         else
             drawXY(div, fig);
     }

     function drawBar(div, fig) {
         var data = new google.visualization.DataTable();
         data.addColumn('string', 'country');
         data.addColumn('number', fig.xLabel);
         (fig.categories || []).forEach(function(c, i) {
             data.addRow([c, fig.values[i]]);
         });
         new google.visualization.BarChart(div).draw(data, {
             title: fig.title,
             legend: {position: 'none'},
             chartArea: {left: '25%', width: '70%', height: '85%'},
         });
     }

     function drawGeo(div, fig) {
         var data = new google.visualization.DataTable();
         data.addColumn('string', 'Country');
         data.addColumn('number', 'Obesity rate');
         (fig.geo || []).forEach(function(g) {
             data.addRow([{v: g.id, f: g.country}, g.rate]);
         });
         new google.visualization.GeoChart(div).draw(data, {
             colorAxis: {colors: ['#c6dbef', '#08306b']},
         });
     }

     function drawXY(div, fig) {
         var series = (fig.series || []).slice();
         if (fig.trend)
             series.push(fig.trend);
         var xs = [];
         series.forEach(function(s) {
             s.x.forEach(function(x) {
                 if (xs.indexOf(x) < 0)
                     xs.push(x);
             });
         });
         xs.sort(function(a, b) { return a - b; });

         var data = new google.visualization.DataTable();
         data.addColumn('number', fig.xLabel || 'x');
         series.forEach(function(s) {
             data.addColumn('number', s.name || 'rate');
         });
         xs.forEach(function(x) {
             var row = [x];
             series.forEach(function(s) {
                 var i = s.x.indexOf(x);
                 row.push(i >= 0 ? s.y[i] : null);
             });
             data.addRow(row);
         });

         var options = {
             title: fig.title,
             hAxis: {title: fig.xLabel},
             vAxis: {title: fig.yLabel, minValue: 0},
             interpolateNulls: true,
             chartArea: {left: '10%', width: '75%', height: '80%'},
         };
         if (fig.kind == 'scatter') {
             options.series = {};
             if (fig.trend)
                 options.series[series.length - 1] = {
                     pointsVisible: false,
                     lineWidth: 1,
                     color: '#888',
                 };
             new google.visualization.ScatterChart(div).draw(data, options);
         } else {
             new google.visualization.LineChart(div).draw(data, options);
         }
     }
    </script>
  </head>
  <body>
    <div id="controls"></div>
    <div id="bar_plot" class="chart"></div>
    <div id="choropleth_plot" class="chart"></div>
    <div id="ts_plot" class="chart"></div>
    <div id="scatter_plot" class="chart"></div>
    <div id="load"></div>
  </body>
</html>
`
