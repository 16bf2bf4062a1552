package ceca

import (
	"html/template"
	"io"

	"github.com/taiwanleaftea/ceca-bank-payments/provider"
)

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Card payment</title>
</head>
<body>
<div class="alert alert-info">Thank you for your order, please click the button to pay by card.</div>
{{- if .Sandbox}}
<div class="alert alert-warning">Warning: The payment gateway is in Sandbox Mode. Your account will not be charged and your order will not be fulfilled.</div>
{{- end}}
<form action="{{.Action}}" method="{{.Method}}" id="cbp_payment_form">
{{- range .Fields}}
<input name="{{.Name}}" type="hidden" value="{{.Value}}"/>
{{- end}}
<div class="mt-2">
<input type="submit" class="button-alt mr-1" id="submit_cbp_payment_form" value="Pay"/>
<a class="button cancel" href="{{.CancelURL}}">Cancel</a>
</div>
</form>
<script>document.getElementById("cbp_payment_form").submit();</script>
</body>
</html>
`))

// RenderForm writes the receipt page that posts form to the gateway
func RenderForm(w io.Writer, form *provider.RedirectForm) error {
	return receiptTemplate.Execute(w, form)
}
