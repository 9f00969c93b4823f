package mail

import "html/template"

var bodyTemplate = template.Must(template.New("order").Parse(`<div dir="{{.Dir}}" style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background: #f9f9f9;">
  <div style="background: #b45309; color: white; padding: 20px; text-align: center; border-radius: 10px 10px 0 0;">
    <h2 style="margin: 0;">{{.L.Title}}</h2>
    <p style="margin: 5px 0 0 0;">{{.L.Reference}}: #{{.Ref}}</p>
  </div>
  <div style="background: white; padding: 20px; border: 1px solid #ddd; border-top: none;">
    <div style="text-align: center; margin-bottom: 20px; padding: 20px; background: #fef3c7; border-radius: 10px;">
      <h3 style="color: #92400e; margin-bottom: 15px;">{{.L.ProductHeading}}</h3>
      {{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.ProductID}}" style="max-width: 200px; border-radius: 10px;" />{{end}}
      <p style="font-size: 18px; font-weight: bold; color: #92400e; margin-top: 10px;">{{.ProductID}}</p>
    </div>
    <table style="width: 100%; border-collapse: collapse; margin-top: 20px;">
      <tr style="background: #f5f5f5;"><td style="padding: 12px; border: 1px solid #ddd; font-weight: bold; width: 40%;">{{.L.FullName}}:</td><td style="padding: 12px; border: 1px solid #ddd;">{{.FullName}}</td></tr>
      <tr><td style="padding: 12px; border: 1px solid #ddd; font-weight: bold;">{{.L.Phone}}:</td><td style="padding: 12px; border: 1px solid #ddd;">{{.Phone}}</td></tr>
      <tr style="background: #f5f5f5;"><td style="padding: 12px; border: 1px solid #ddd; font-weight: bold;">{{.L.Wilaya}}:</td><td style="padding: 12px; border: 1px solid #ddd;">{{.Wilaya}}</td></tr>
      <tr><td style="padding: 12px; border: 1px solid #ddd; font-weight: bold;">{{.L.Baladiya}}:</td><td style="padding: 12px; border: 1px solid #ddd;">{{.Baladiya}}</td></tr>
      <tr style="background: #f5f5f5;"><td style="padding: 12px; border: 1px solid #ddd; font-weight: bold;">{{.L.Delivery}}:</td><td style="padding: 12px; border: 1px solid #ddd;">{{.Delivery}}</td></tr>
      <tr><td style="padding: 12px; border: 1px solid #ddd; font-weight: bold;">{{.L.BoxPrice}}:</td><td style="padding: 12px; border: 1px solid #ddd;">{{.BoxPrice}}</td></tr>
      <tr style="background: #f5f5f5;"><td style="padding: 12px; border: 1px solid #ddd; font-weight: bold;">{{.L.DeliveryCost}}:</td><td style="padding: 12px; border: 1px solid #ddd;">{{.DeliveryCost}}</td></tr>
      <tr style="background: #b45309; color: white;"><td style="padding: 15px; border: 1px solid #ddd; font-weight: bold; font-size: 16px;">{{.L.Total}}:</td><td style="padding: 15px; border: 1px solid #ddd; font-weight: bold; font-size: 18px;">{{.Total}}</td></tr>
      {{if .Notes}}<tr><td style="padding: 12px; border: 1px solid #ddd; font-weight: bold;">{{.L.Notes}}:</td><td style="padding: 12px; border: 1px solid #ddd;">{{.Notes}}</td></tr>{{end}}
    </table>
  </div>
  <div style="background: #f5f5f5; padding: 15px; text-align: center; border-radius: 0 0 10px 10px; font-size: 12px; color: #666;">{{.L.Footer}}</div>
</div>
`))
