package usecase

// html/template escapes every interpolated value for its HTML context.
const emailTemplates = `
{{define "confirmation"}}
<h2>Welcome to {{.product}}!</h2>
<p>Hi {{.full_name}},</p>
<p>Thank you for joining our waitlist. We've noted your field of study as "{{.field_of_study}}".</p>
<p>We'll keep you updated on our launch and early access opportunities, especially regarding features relevant to {{.field_of_study}} students.</p>
<p>Best regards,<br>{{.product}} Team</p>
{{end}}

{{define "operator_alert"}}
<h2>New {{.product}} waitlist registration</h2>
<p><strong>Full name:</strong> {{.full_name}}</p>
<p><strong>Email:</strong> {{.email}}</p>
<p><strong>Field of study:</strong> {{.field_of_study}}</p>
<p>Submitted at {{.submitted_at}}</p>
{{end}}
`
