package pass

// WGSL sources for the built-in passes. The uniform struct layouts mirror the
// GPU records in the context and material packages; changing one side without
// the other corrupts every draw, so the field orders here are load-bearing.

// sharedShaderDecls holds the uniform structs common to the scene shaders.
const sharedShaderDecls = `
struct FrameData {
    view: mat4x4f,
    projection: mat4x4f,
    view_projection: mat4x4f,
    inverse_view: mat4x4f,
    inverse_projection: mat4x4f,
    camera_position: vec3f,
    time: f32,
    camera_forward: vec3f,
    delta_time: f32,
}

struct ShadowData {
    view_projection: mat4x4f,
    bias: f32,
    enabled: f32,
    _pad: vec2f,
}
`

// sceneShaderWGSL is the lit forward shader used by the opaque and
// transparent passes. Group 0 is the scene globals, group 1 the material
// parameters, group 2 the per-pass transform table addressed by the
// instance index.
const sceneShaderWGSL = sharedShaderDecls + `
struct DirectionalLight {
    direction: vec3f,
    intensity: f32,
    color: vec3f,
    _pad: f32,
}

struct PointLight {
    position: vec3f,
    range: f32,
    color: vec3f,
    intensity: f32,
}

struct SpotLight {
    position: vec3f,
    range: f32,
    direction: vec3f,
    intensity: f32,
    color: vec3f,
    inner_cone: f32,
    outer_cone: f32,
}

struct LightData {
    ambient_color: vec3f,
    ambient_intensity: f32,
    fog_color: vec3f,
    fog_density: f32,
    directional_count: u32,
    point_count: u32,
    spot_count: u32,
    _pad: u32,
    directional: array<DirectionalLight, 4>,
    point: array<PointLight, 64>,
    spot: array<SpotLight, 32>,
}

struct MaterialParams {
    base_color: vec4f,
    metallic: f32,
    roughness: f32,
    _pad: vec2f,
}

@group(0) @binding(0) var<uniform> frame: FrameData;
@group(0) @binding(1) var<uniform> lights: LightData;
@group(0) @binding(2) var<uniform> shadow: ShadowData;
@group(0) @binding(3) var shadow_map: texture_depth_2d;
@group(0) @binding(4) var shadow_sampler: sampler_comparison;

@group(1) @binding(0) var<uniform> mat: MaterialParams;

@group(2) @binding(0) var<storage, read> transforms: array<mat4x4f>;

struct VertexIn {
    @location(0) position: vec3f,
    @location(1) normal: vec3f,
    @location(2) uv: vec2f,
}

struct VertexOut {
    @builtin(position) clip_position: vec4f,
    @location(0) world_position: vec3f,
    @location(1) world_normal: vec3f,
    @location(2) uv: vec2f,
    @location(3) shadow_position: vec4f,
}

@vertex
fn vs_main(in: VertexIn, @builtin(instance_index) instance: u32) -> VertexOut {
    let model = transforms[instance];
    let world = model * vec4f(in.position, 1.0);

    var out: VertexOut;
    out.clip_position = frame.view_projection * world;
    out.world_position = world.xyz;
    out.world_normal = normalize((model * vec4f(in.normal, 0.0)).xyz);
    out.uv = in.uv;
    out.shadow_position = shadow.view_projection * world;
    return out;
}

fn sample_shadow(shadow_position: vec4f, n_dot_l: f32) -> f32 {
    if (shadow.enabled < 0.5) {
        return 1.0;
    }
    let proj = shadow_position.xyz / shadow_position.w;
    let uv = proj.xy * vec2f(0.5, -0.5) + vec2f(0.5, 0.5);
    if (uv.x < 0.0 || uv.x > 1.0 || uv.y < 0.0 || uv.y > 1.0 || proj.z > 1.0) {
        return 1.0;
    }
    let bias = max(shadow.bias * (1.0 - n_dot_l), shadow.bias * 0.1);
    let depth = proj.z - bias;

    // 3x3 PCF
    let texel = 1.0 / f32(textureDimensions(shadow_map).x);
    var lit = 0.0;
    for (var dy = -1; dy <= 1; dy++) {
        for (var dx = -1; dx <= 1; dx++) {
            let offset = vec2f(f32(dx), f32(dy)) * texel;
            lit += textureSampleCompare(shadow_map, shadow_sampler, uv + offset, depth);
        }
    }
    return lit / 9.0;
}

fn shade_surface(normal: vec3f, view_dir: vec3f, light_dir: vec3f, light_color: vec3f, intensity: f32, albedo: vec3f) -> vec3f {
    let n_dot_l = max(dot(normal, light_dir), 0.0);
    let half_dir = normalize(light_dir + view_dir);
    let shininess = mix(64.0, 4.0, mat.roughness);
    let spec_strength = mix(0.04, 1.0, mat.metallic);
    let specular = pow(max(dot(normal, half_dir), 0.0), shininess) * spec_strength;
    return (albedo * n_dot_l + vec3f(specular)) * light_color * intensity;
}

fn attenuate(distance: f32, range: f32) -> f32 {
    let x = clamp(1.0 - pow(distance / max(range, 0.001), 4.0), 0.0, 1.0);
    return x * x / (distance * distance + 1.0);
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4f {
    let normal = normalize(in.world_normal);
    let view_dir = normalize(frame.camera_position - in.world_position);
    let albedo = mat.base_color.rgb;

    var color = albedo * lights.ambient_color * lights.ambient_intensity;

    for (var i = 0u; i < lights.directional_count; i++) {
        let l = lights.directional[i];
        let light_dir = normalize(-l.direction);
        var contribution = shade_surface(normal, view_dir, light_dir, l.color, l.intensity, albedo);
        if (i == 0u) {
            contribution *= sample_shadow(in.shadow_position, max(dot(normal, light_dir), 0.0));
        }
        color += contribution;
    }

    for (var i = 0u; i < lights.point_count; i++) {
        let l = lights.point[i];
        let to_light = l.position - in.world_position;
        let distance = length(to_light);
        let light_dir = to_light / max(distance, 0.001);
        color += shade_surface(normal, view_dir, light_dir, l.color, l.intensity, albedo)
            * attenuate(distance, l.range);
    }

    for (var i = 0u; i < lights.spot_count; i++) {
        let l = lights.spot[i];
        let to_light = l.position - in.world_position;
        let distance = length(to_light);
        let light_dir = to_light / max(distance, 0.001);
        let cone = dot(-light_dir, normalize(l.direction));
        let falloff = clamp((cone - l.outer_cone) / max(l.inner_cone - l.outer_cone, 0.001), 0.0, 1.0);
        color += shade_surface(normal, view_dir, light_dir, l.color, l.intensity, albedo)
            * attenuate(distance, l.range) * falloff;
    }

    if (lights.fog_density > 0.0) {
        let eye_distance = length(frame.camera_position - in.world_position);
        let fog = 1.0 - exp(-lights.fog_density * lights.fog_density * eye_distance * eye_distance);
        color = mix(color, lights.fog_color, clamp(fog, 0.0, 1.0));
    }

    return vec4f(color, mat.base_color.a);
}
`

// depthShaderWGSL holds the two depth-only vertex entry points: vs_depth
// projects with the camera (depth prepass), vs_shadow with the light
// (shadow map). Neither has a fragment stage.
const depthShaderWGSL = sharedShaderDecls + `
@group(0) @binding(0) var<uniform> frame: FrameData;
@group(0) @binding(1) var<uniform> shadow: ShadowData;

@group(1) @binding(0) var<storage, read> transforms: array<mat4x4f>;

struct VertexIn {
    @location(0) position: vec3f,
    @location(1) normal: vec3f,
    @location(2) uv: vec2f,
}

@vertex
fn vs_depth(in: VertexIn, @builtin(instance_index) instance: u32) -> @builtin(position) vec4f {
    return frame.view_projection * transforms[instance] * vec4f(in.position, 1.0);
}

@vertex
fn vs_shadow(in: VertexIn, @builtin(instance_index) instance: u32) -> @builtin(position) vec4f {
    return shadow.view_projection * transforms[instance] * vec4f(in.position, 1.0);
}
`

// skyboxShaderWGSL renders the inward-facing unit cube with a procedural
// zenith/horizon gradient. The cube's clip position is written as xyww so it
// lands on the far plane and only fills fragments the scene left open.
const skyboxShaderWGSL = `
struct SkyUniform {
    view_projection: mat4x4f,
    zenith: vec4f,
    horizon: vec4f,
}

@group(1) @binding(0) var<uniform> sky: SkyUniform;

struct VertexOut {
    @builtin(position) clip_position: vec4f,
    @location(0) direction: vec3f,
}

@vertex
fn vs_main(@location(0) position: vec3f) -> VertexOut {
    var out: VertexOut;
    let clip = sky.view_projection * vec4f(position, 1.0);
    out.clip_position = clip.xyww;
    out.direction = position;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4f {
    let up = clamp(normalize(in.direction).y, 0.0, 1.0);
    let blend = pow(up, 0.6);
    let color = mix(sky.horizon.rgb, sky.zenith.rgb, blend);
    return vec4f(color, 1.0);
}
`

// postShaderWGSL holds the fullscreen-triangle vertex stage plus the
// post-process fragment entry points. params.x selects the tonemap curve
// (0 linear, 1 reinhard, 2 aces, 3 filmic, 4 uncharted2).
const postShaderWGSL = `
struct PostParams {
    params: vec4f,
}

@group(0) @binding(0) var src: texture_2d<f32>;
@group(0) @binding(1) var src_sampler: sampler;
@group(0) @binding(2) var<uniform> post: PostParams;

struct FullscreenOut {
    @builtin(position) clip_position: vec4f,
    @location(0) uv: vec2f,
}

@vertex
fn vs_fullscreen(@builtin(vertex_index) vi: u32) -> FullscreenOut {
    // One oversized triangle covering the viewport.
    let x = f32(i32(vi & 1u) * 4 - 1);
    let y = f32(i32(vi >> 1u) * 4 - 1);
    var out: FullscreenOut;
    out.clip_position = vec4f(x, y, 0.0, 1.0);
    out.uv = vec2f(x, -y) * 0.5 + vec2f(0.5, 0.5);
    return out;
}

@fragment
fn fs_blit(in: FullscreenOut) -> @location(0) vec4f {
    return textureSample(src, src_sampler, in.uv);
}

fn tonemap_aces(x: vec3f) -> vec3f {
    let a = 2.51;
    let b = 0.03;
    let c = 2.43;
    let d = 0.59;
    let e = 0.14;
    return clamp((x * (a * x + b)) / (x * (c * x + d) + e), vec3f(0.0), vec3f(1.0));
}

fn tonemap_filmic(x: vec3f) -> vec3f {
    let v = max(x - vec3f(0.004), vec3f(0.0));
    return (v * (6.2 * v + 0.5)) / (v * (6.2 * v + 1.7) + 0.06);
}

fn uncharted2_curve(x: vec3f) -> vec3f {
    let a = 0.15;
    let b = 0.50;
    let c = 0.10;
    let d = 0.20;
    let e = 0.02;
    let f = 0.30;
    return ((x * (a * x + c * b) + d * e) / (x * (a * x + b) + d * f)) - vec3f(e / f);
}

@fragment
fn fs_tonemap(in: FullscreenOut) -> @location(0) vec4f {
    let sample = textureSample(src, src_sampler, in.uv);
    let curve = u32(post.params.x);
    var color = sample.rgb;
    switch curve {
        case 1u: {
            color = color / (color + vec3f(1.0));
        }
        case 2u: {
            color = tonemap_aces(color);
        }
        case 3u: {
            color = tonemap_filmic(color);
        }
        case 4u: {
            let exposure_bias = 2.0;
            let white = uncharted2_curve(vec3f(11.2));
            color = uncharted2_curve(color * exposure_bias) / white;
        }
        default: {}
    }
    return vec4f(color, sample.a);
}

@fragment
fn fs_fxaa(in: FullscreenOut) -> @location(0) vec4f {
    let texel = 1.0 / vec2f(textureDimensions(src));
    let luma_weights = vec3f(0.299, 0.587, 0.114);

    let center = textureSampleLevel(src, src_sampler, in.uv, 0.0);
    let luma_c = dot(center.rgb, luma_weights);
    let luma_n = dot(textureSampleLevel(src, src_sampler, in.uv + vec2f(0.0, -texel.y), 0.0).rgb, luma_weights);
    let luma_s = dot(textureSampleLevel(src, src_sampler, in.uv + vec2f(0.0, texel.y), 0.0).rgb, luma_weights);
    let luma_w = dot(textureSampleLevel(src, src_sampler, in.uv + vec2f(-texel.x, 0.0), 0.0).rgb, luma_weights);
    let luma_e = dot(textureSampleLevel(src, src_sampler, in.uv + vec2f(texel.x, 0.0), 0.0).rgb, luma_weights);

    let luma_min = min(luma_c, min(min(luma_n, luma_s), min(luma_w, luma_e)));
    let luma_max = max(luma_c, max(max(luma_n, luma_s), max(luma_w, luma_e)));
    if (luma_max - luma_min < max(0.0312, luma_max * 0.125)) {
        return center;
    }

    var dir = vec2f(-((luma_n + luma_s) - (luma_w + luma_e)), (luma_w + luma_e) - (luma_n + luma_s));
    let dir_reduce = max((luma_n + luma_s + luma_w + luma_e) * 0.03125, 0.0078125);
    let rcp_dir = 1.0 / (min(abs(dir.x), abs(dir.y)) + dir_reduce);
    dir = clamp(dir * rcp_dir, vec2f(-8.0), vec2f(8.0)) * texel;

    let rgb_a = 0.5 * (
        textureSampleLevel(src, src_sampler, in.uv + dir * (1.0 / 3.0 - 0.5), 0.0).rgb +
        textureSampleLevel(src, src_sampler, in.uv + dir * (2.0 / 3.0 - 0.5), 0.0).rgb);
    let rgb_b = rgb_a * 0.5 + 0.25 * (
        textureSampleLevel(src, src_sampler, in.uv + dir * -0.5, 0.0).rgb +
        textureSampleLevel(src, src_sampler, in.uv + dir * 0.5, 0.0).rgb);

    let luma_b = dot(rgb_b, luma_weights);
    if (luma_b < luma_min || luma_b > luma_max) {
        return vec4f(rgb_a, center.a);
    }
    return vec4f(rgb_b, center.a);
}
`
