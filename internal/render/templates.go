package render

import "html/template"

var templates = template.Must(template.New("units").Parse(`
{{define "text"}}<div id="{{.ContainerID}}" class="ad-unit ad-text" data-ad-id="{{.ID}}" data-position="{{.Position}}"{{if .ZIndex}} style="position:relative;z-index:{{.ZIndex}}"{{end}}>
{{- if .Link}}<a href="{{.Link}}" rel="sponsored noopener" target="_blank"><strong class="ad-title">{{.Title}}</strong></a>{{else}}<strong class="ad-title">{{.Title}}</strong>{{end}}
{{- if .Body}}<p class="ad-body">{{.Body}}</p>{{end -}}
</div>{{end}}

{{define "image"}}<div id="{{.ContainerID}}" class="ad-unit {{if .Banner}}ad-banner{{else}}ad-image{{end}}" data-ad-id="{{.ID}}" data-position="{{.Position}}"{{if .ZIndex}} style="position:relative;z-index:{{.ZIndex}}"{{end}}>
{{- if .Link}}<a href="{{.Link}}" rel="sponsored noopener" target="_blank">{{end -}}
<img src="{{.Media}}" alt="{{.Alt}}" loading="lazy">
{{- if .Link}}</a>{{end}}
{{- if .Body}}<p class="ad-caption">{{.Body}}</p>{{end -}}
</div>{{end}}

{{define "video"}}<div id="{{.ContainerID}}" class="ad-unit ad-video" data-ad-id="{{.ID}}" data-position="{{.Position}}"{{if .ZIndex}} style="position:relative;z-index:{{.ZIndex}}"{{end}}>
<video src="{{.Media}}"{{if .Poster}} poster="{{.Poster}}"{{end}} controls muted playsinline preload="metadata"></video>
{{- if .Link}}<a href="{{.Link}}" rel="sponsored noopener" target="_blank">{{if .Title}}{{.Title}}{{else}}Learn more{{end}}</a>{{end -}}
</div>{{end}}

{{define "html"}}<div id="{{.ContainerID}}" class="ad-unit ad-html" data-ad-id="{{.ID}}" data-position="{{.Position}}"{{if .ZIndex}} style="position:relative;z-index:{{.ZIndex}}"{{end}}>
{{- if .CSS}}<style>{{.CSS}}</style>{{end -}}
{{.Markup}}
<script>(function(){
var el=document.getElementById({{.ContainerID}});if(!el){return;}
function beacon(t){try{navigator.sendBeacon({{.EventsURL}},JSON.stringify({event_type:String(t),page_url:location.pathname,referrer:document.referrer}));}catch(e){}}
el.addEventListener("click",function(e){var a=e.target&&e.target.closest?e.target.closest("a[href]"):null;if(a&&el.contains(a)){beacon("click");}},true);
{{- if .Script}}
function wrap(n){return n?Object.freeze({
text:function(){return n.textContent;},
setText:function(v){n.textContent=String(v);},
attr:function(k){return n.getAttribute(String(k));},
addClass:function(c){n.classList.add(String(c));},
removeClass:function(c){n.classList.remove(String(c));},
toggleClass:function(c){return n.classList.toggle(String(c));},
show:function(){n.style.display="";},
hide:function(){n.style.display="none";},
on:function(t,f){if(typeof f==="function"){n.addEventListener(String(t),function(){f.call(undefined);});}}
}):null;}
var ad=Object.freeze({
container:wrap(el),
query:function(s){return wrap(el.querySelector(String(s)));},
queryAll:function(s){return Object.freeze(Array.prototype.map.call(el.querySelectorAll(String(s)),function(n){return wrap(n);}));},
track:beacon
});
try{new Function("ad","window","document","globalThis","self","top","parent","frames","opener",{{.Script}}).call(undefined,ad);}catch(e){beacon("error");}
{{- end}}
})();</script>
</div>{{end}}

{{define "script"}}<div id="{{.ContainerID}}" class="ad-unit ad-network" data-ad-id="{{.ID}}" data-position="{{.Position}}" data-network="{{.Network}}"{{if .ZIndex}} style="position:relative;z-index:{{.ZIndex}}"{{end}}>
{{- .Markup -}}
</div>{{end}}

{{define "placeholder"}}<div id="{{.ContainerID}}" class="ad-unit ad-placeholder" data-ad-id="{{.ID}}" data-position="{{.Position}}">{{.Title}}</div>{{end}}
`))
