package generator

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
   <meta charset="UTF-8"/>
   {{ if gt .Refresh 0 }}<meta http-equiv="refresh" content="{{ .Refresh }}">{{ end }}
   <title>{{ .Title }}</title>
   <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
   <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
   <style>
      :root {
         --bg-color: #121212;
         --text-color: #e0e0e0;
         --card-bg: #1e1e1e;
         --card-border: #333;
         --summary-bg: #252525;
         --error-bg: #3d1a1a;
         --error-border: #a52a2a;
         --notice-bg: #3d2e1a;
         --notice-border: #b25900;
         --muted: #888;
      }
      html { background-color: #121212; }
      body {
         font-family: Arial, sans-serif;
         max-width: 1100px;
         margin: 0 auto;
         padding: 20px;
         background-color: var(--bg-color);
         color: var(--text-color);
      }
      h1, h2, h3, h4 { color: var(--text-color); }
      .card {
         border: 1px solid var(--card-border);
         margin-bottom: 15px;
         padding: 10px;
         border-radius: 5px;
         background-color: var(--card-bg);
      }
      .card.error { background-color: var(--error-bg); border-color: var(--error-border); }
      .card.notice { background-color: var(--notice-bg); border-color: var(--notice-border); }
      .widgets { background-color: var(--summary-bg); padding: 15px; border-radius: 5px; margin-bottom: 15px; }
      .widget { margin: 8px 0; }
      .widget select { background-color: var(--card-bg); color: var(--text-color); border: 1px solid var(--card-border); padding: 4px; }
      .table-wrap { max-height: 400px; overflow: auto; border: 1px solid var(--card-border); border-radius: 5px; }
      table { border-collapse: collapse; width: 100%; font-size: 0.85em; }
      th, td { padding: 4px 8px; border-bottom: 1px solid var(--card-border); text-align: left; }
      th { position: sticky; top: 0; background-color: var(--summary-bg); }
      .chart { background-color: #fff; border-radius: 5px; margin: 15px 0; overflow-x: auto; }
      .chart.empty { background-color: var(--card-bg); color: var(--muted); padding: 20px; }
      .map { height: 500px; width: 100%; border: 2px solid var(--card-border); border-radius: 5px; }
      .map-legend { background-color: var(--card-bg); padding: 10px; border-radius: 5px; margin-top: 10px; border: 1px solid var(--card-border); }
      .legend-bar { display: flex; }
      .legend-item { flex: 1; text-align: center; font-size: 0.8em; }
      .legend-color { height: 14px; margin-bottom: 3px; }
      .last-updated { font-size: 0.8em; color: var(--muted); margin-top: 20px; }
      a { color: #add8e6; }
   </style>
</head>
<body>
   <h1>{{ .Title }}</h1>
   <h2>{{ .Header }}</h2>

   {{ if .Err }}
   <div class="card error" id="fatal-error">
      <h3>Nothing to show</h3>
      <p>{{ .Err }}</p>
   </div>
   {{ else }}
   <h3>{{ .Subheader }}</h3>

   <div class="widgets">
      {{ with .ShowData }}
      <form class="widget" method="post" action="{{ $.ActionURL }}">
         <input type="hidden" name="key" value="{{ .Key }}">
         <input type="hidden" name="value" value="{{ .Toggle }}">
         <label>
            <input type="checkbox" {{ if .Checked }}checked{{ end }} {{ if $.Interactive }}onchange="this.form.submit()"{{ else }}disabled{{ end }}>
            {{ .Label }}
         </label>
      </form>
      {{ end }}

      {{ if .Table }}
      <p>Data set used:</p>
      <div class="table-wrap">
         <table id="dataset">
            <thead><tr>{{ range .Table.Header }}<th>{{ . }}</th>{{ end }}</tr></thead>
            <tbody>
            {{ range .Table.Rows }}<tr>{{ range . }}<td>{{ . }}</td>{{ end }}</tr>
            {{ end }}
            </tbody>
         </table>
      </div>
      {{ if .Means }}
      <h4>Class means</h4>
      <table id="means">
         <thead><tr><th>class</th><th>displ</th><th>hwy</th><th>rows</th></tr></thead>
         <tbody>
         {{ range .Means }}<tr><td>{{ .Class }}</td><td>{{ .Displ }}</td><td>{{ .Hwy }}</td><td>{{ .Count }}</td></tr>
         {{ end }}
         </tbody>
      </table>
      {{ end }}
      {{ end }}

      {{ with .Year }}
      <form class="widget" method="post" action="{{ $.ActionURL }}">
         <input type="hidden" name="key" value="{{ .Key }}">
         <label>{{ .Label }}
            <select name="value" {{ if $.Interactive }}onchange="this.form.submit()"{{ else }}disabled{{ end }}>
               {{ range .Options }}<option value="{{ .Value }}" {{ if .Selected }}selected{{ end }}>{{ .Value }}</option>
               {{ end }}
            </select>
         </label>
         {{ if $.Interactive }}<noscript><button type="submit">Apply</button></noscript>{{ end }}
      </form>
      {{ end }}
   </div>

   {{ range .Charts }}
   {{ if .Empty }}
   <div class="chart empty"><h4>{{ .Title }}</h4><p>No rows for this selection.</p></div>
   {{ else }}
   <div class="chart" style="max-width: {{ .Width }}px">{{ .SVG }}</div>
   {{ end }}
   {{ end }}

   <p>Data Source: <a href="{{ .SourceURL }}">{{ .SourceURL }}</a></p>

   <h3>Point Map</h3>
   {{ if .PointsErr }}
   <div class="card error" id="points-error"><p>Point map unavailable: {{ .PointsErr }}</p></div>
   {{ else if .PointMap }}
   <div id="point-map" class="map"></div>
   <script>
      (function() {
         const markers = {{ toJSON .PointMap.Markers }};
         const map = L.map('point-map').setView([{{ .PointMap.Lat }}, {{ .PointMap.Lon }}], {{ .PointMap.Zoom }});
         L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
            attribution: '&copy; OpenStreetMap contributors'
         }).addTo(map);
         markers.forEach(function(m) {
            L.circleMarker(m, { radius: 4, color: '#ff4b4b', fillOpacity: 0.8, weight: 0 }).addTo(map);
         });
      })();
   </script>
   {{ else }}
   <div class="card notice"><p>No point data configured.</p></div>
   {{ end }}

   <h3>Choropleth Map</h3>
   {{ if .ChoroplethErr }}
   <div class="card error" id="choropleth-error"><p>Choropleth unavailable: {{ .ChoroplethErr }}</p></div>
   {{ else if .Choropleth }}
   <div id="choropleth-map" class="map"></div>
   <div class="map-legend">
      <div class="legend-bar">
         {{ range .Choropleth.Legend }}<div class="legend-item"><div class="legend-color" style="background-color: {{ .Color }}"></div>{{ .Label }}</div>
         {{ end }}
      </div>
      <div class="last-updated">{{ .Choropleth.Mapped }} of {{ .Choropleth.Regions }} regions coloured</div>
   </div>
   {{ if .Choropleth.Unmapped }}
   <div class="card notice" id="unmapped">
      <details>
         <summary>{{ len .Choropleth.Unmapped }} region codes have no boundary and are not drawn</summary>
         <p>{{ range $i, $c := .Choropleth.Unmapped }}{{ if $i }}, {{ end }}{{ $c }}{{ end }}</p>
      </details>
   </div>
   {{ end }}
   <script>
      (function() {
         const map = L.map('choropleth-map', { zoomSnap: 0.1 }).setView([{{ .Choropleth.Lat }}, {{ .Choropleth.Lon }}], {{ .Choropleth.Zoom }});
         L.tileLayer('https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png', {
            attribution: '&copy; OpenStreetMap contributors &copy; CARTO'
         }).addTo(map);
         function draw(regions) {
            L.geoJSON(regions, {
               style: function(f) {
                  const fill = f.properties.fill;
                  return {
                     fillColor: fill || 'transparent',
                     fillOpacity: fill ? {{ .Choropleth.Opacity }} : 0,
                     weight: {{ .Choropleth.LineWidth }},
                     stroke: {{ .Choropleth.LineWidth }} > 0
                  };
               },
               onEachFeature: function(f, layer) {
                  if (f.properties.value !== null) {
                     layer.bindTooltip(f.properties.code + ': ' + f.properties.value);
                  }
               }
            }).addTo(map);
         }
         {{ if .Choropleth.URL }}
         fetch({{ .Choropleth.URL }}).then(function(r) { return r.json(); }).then(draw);
         {{ else }}
         draw({{ .Choropleth.Inline }});
         {{ end }}
      })();
   </script>
   {{ else }}
   <div class="card notice"><p>No choropleth sources configured.</p></div>
   {{ end }}
   {{ end }}

   <div class="last-updated">Last updated: {{ .LastUpdated }}</div>
</body>
</html>
`
