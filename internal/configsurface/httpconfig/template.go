package httpconfig

// statusPageTemplate is the Go equivalent of the original firmware's
// index.html with its ${xxx} substitution points — html/template's
// {{.Field}} placeholders fill the same role, with automatic escaping
// the original's naive String.replace never had.
const statusPageTemplate = `<!DOCTYPE html>
<html>
<head><title>rcbridge</title></head>
<body>
<h1>rcbridge status</h1>
<table>
<tr><td>paired</td><td>{{.Paired}}</td></tr>
<tr><td>peer</td><td>{{.PeerAddr}}</td></tr>
<tr><td>channel</td><td>{{.Channel}}</td></tr>
<tr><td>link quality</td><td>{{printf "%.3f" .LinkQuality}}</td></tr>
</table>
<form action="/reset" method="post"><button type="submit">reset pairing</button></form>
</body>
</html>
`
